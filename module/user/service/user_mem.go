package service

import (
	"context"
	"sync"
	"time"

	"LuxRelay/module/user/model"
)

// MemStore Store 的内存实现。
type MemStore struct {
	mu   sync.RWMutex
	byID map[string]*model.User

	// FailPresence 注入在线快照写失败（必须不影响连接生命周期）
	FailPresence error
}

func NewMemStore(users ...*model.User) *MemStore {
	s := &MemStore{byID: make(map[string]*model.User)}
	for _, u := range users {
		s.byID[u.UserID] = u
	}
	return s
}

func (s *MemStore) Put(u *model.User) {
	s.mu.Lock()
	s.byID[u.UserID] = u
	s.mu.Unlock()
}

func (s *MemStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok, nil
}

func (s *MemStore) MarkOnline(_ context.Context, id string) error {
	if s.FailPresence != nil {
		return s.FailPresence
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		now := time.Now().UTC()
		u.IsOnline = true
		u.LastSeenAt = &now
	}
	return nil
}

func (s *MemStore) MarkOffline(_ context.Context, id string, lastSeen time.Time) error {
	if s.FailPresence != nil {
		return s.FailPresence
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		u.IsOnline = false
		t := lastSeen
		u.LastSeenAt = &t
	}
	return nil
}
