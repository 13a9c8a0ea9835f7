package chat

import (
	"context"
	"sync"
	"time"

	"LuxRelay/logger"
	usersvc "LuxRelay/module/user/service"
	"LuxRelay/service/storage"
)

// PresenceEntry 进程内在线表的一行。
type PresenceEntry struct {
	UserID      string
	ConnID      string
	Role        string
	ConnectedAt time.Time
	Client      *Client
}

// Registry 单进程在线表：userId -> 当前连接。
//
// 不变量：
//   - 每个用户至多一行；同一用户的新连接直接覆盖旧行（last-writer-wins），
//     被顶掉的旧物理连接不会收到事件，也不保证被关闭（这里不是连接监督者）。
//   - 所有读写都经 mu 串行化；这是文档化的并发约定，不是运行时巧合。
//
// 副作用策略：用户主档在线字段与 Redis 镜像的写失败只记日志，
// 绝不阻断连接建立/关闭流程。
type Registry struct {
	mu     sync.Mutex
	byUser map[string]*PresenceEntry

	users  usersvc.Store
	mirror *storage.PresenceMirror
	fanout *Fanout
}

func NewRegistry(users usersvc.Store, mirror *storage.PresenceMirror, fanout *Fanout) *Registry {
	return &Registry{
		byUser: make(map[string]*PresenceEntry),
		users:  users,
		mirror: mirror,
		fanout: fanout,
	}
}

// Register 无条件登记（覆盖同用户既有行），回写在线快照并向所有连接广播 user:online。
func (r *Registry) Register(ctx context.Context, c *Client) {
	now := time.Now().UTC()
	entry := &PresenceEntry{
		UserID:      c.UserID,
		ConnID:      c.ConnID,
		Role:        c.Role,
		ConnectedAt: now,
		Client:      c,
	}

	r.mu.Lock()
	prev := r.byUser[c.UserID]
	r.byUser[c.UserID] = entry
	r.mu.Unlock()

	if prev != nil {
		logger.Infof("[registry] superseded user=%s old_conn=%s new_conn=%s", c.UserID, prev.ConnID, c.ConnID)
	}

	if err := r.users.MarkOnline(ctx, c.UserID); err != nil {
		logger.Errorf("[registry] mark online failed user=%s err=%v", c.UserID, err)
	}
	if err := r.mirror.Online(ctx, c.UserID, c.ConnID); err != nil {
		logger.Errorf("[registry] presence mirror online failed user=%s err=%v", c.UserID, err)
	}

	r.broadcast(EventUserOnline, onlinePayload(c.UserID, now))
}

// Lookup 纯读：在线返回当前连接。
func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byUser[userID]
	if !ok {
		return nil, false
	}
	return e.Client, true
}

// Unregister 仅当存储的连接ID仍是断开的这条时才移除
// （防止迟到的断开把新连接的登记顶掉）。移除成功时回写离线快照并广播 user:offline。
func (r *Registry) Unregister(ctx context.Context, userID, connID string) bool {
	r.mu.Lock()
	e, ok := r.byUser[userID]
	if !ok || e.ConnID != connID {
		r.mu.Unlock()
		return false
	}
	delete(r.byUser, userID)
	r.mu.Unlock()

	lastSeen := time.Now().UTC()
	if err := r.users.MarkOffline(ctx, userID, lastSeen); err != nil {
		logger.Errorf("[registry] mark offline failed user=%s err=%v", userID, err)
	}
	if err := r.mirror.Offline(ctx, userID, lastSeen); err != nil {
		logger.Errorf("[registry] presence mirror offline failed user=%s err=%v", userID, err)
	}

	r.broadcast(EventUserOffline, offlinePayload(userID, lastSeen))
	return true
}

// Clients 当前所有在线连接的快照。
func (r *Registry) Clients() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Client, 0, len(r.byUser))
	for _, e := range r.byUser {
		out = append(out, e.Client)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}

func (r *Registry) broadcast(event string, data any) {
	payload, err := EncodeFrame(event, data)
	if err != nil {
		logger.Errorf("[registry] encode %s failed: %v", event, err)
		return
	}
	r.fanout.Broadcast(r.Clients(), payload)
}
