package chat

import "sync"

// Rooms 按用户ID寻址的逻辑频道（room）。
// 与 Registry 的区别：Registry 回答“这个用户现在哪条连接在线”，
// Rooms 回答“发给 user:<id> 频道的事件该投给谁”。
// 频道是持久地址：用户离线时 Publish 自然无人接收（无排队、无重放），
// 重连并重新 Join 后开始收到后续事件。
type Rooms struct {
	mu     sync.Mutex
	byUser map[string]map[*Client]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{byUser: make(map[string]map[*Client]struct{})}
}

func (r *Rooms) Join(userID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.byUser[userID]
	if m == nil {
		m = make(map[*Client]struct{})
		r.byUser[userID] = m
	}
	m[c] = struct{}{}
}

func (r *Rooms) Leave(userID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.byUser[userID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(r.byUser, userID)
		}
	}
}

// Publish 投递到频道当前所有成员，返回实际投递数。
func (r *Rooms) Publish(userID string, payload []byte) int {
	r.mu.Lock()
	members := make([]*Client, 0, len(r.byUser[userID]))
	for c := range r.byUser[userID] {
		members = append(members, c)
	}
	r.mu.Unlock()

	n := 0
	for _, c := range members {
		if c.Enqueue(payload) {
			n++
		}
	}
	return n
}
