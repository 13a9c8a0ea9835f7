package message

import (
	"context"
	"sync"
	"time"

	"LuxRelay/module/chat/model"

	"github.com/google/uuid"
)

// MemStore Store 的内存实现：单测与无库联调用。
type MemStore struct {
	mu   sync.RWMutex
	byID map[string]*model.Message

	// FailCreate 注入建档失败（单测模拟存储不可用）
	FailCreate error
}

func NewMemStore() *MemStore {
	return &MemStore{byID: make(map[string]*model.Message)}
}

func (s *MemStore) Create(_ context.Context, senderID, receiverID, content, msgType string, metadata map[string]string) (*model.Message, error) {
	if s.FailCreate != nil {
		return nil, s.FailCreate
	}
	if !model.ValidMsgType(msgType) {
		msgType = model.MsgTypeText
	}
	msg := &model.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Type:       msgType,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
	s.mu.Lock()
	s.byID[msg.ID] = msg
	s.mu.Unlock()
	return msg, nil
}

// Len 当前存量（单测断言用）。
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *MemStore) GetByID(_ context.Context, id string) (*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *msg
	return &cp, nil
}

func (s *MemStore) MarkRead(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	msg.Read = true
	t := at
	msg.ReadAt = &t
	return nil
}
