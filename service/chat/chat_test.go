package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	message "LuxRelay/module/chat/message"
	usermodel "LuxRelay/module/user/model"
	userservice "LuxRelay/module/user/service"

	"github.com/stretchr/testify/require"
)

// ===== 测试脚手架 =====

func seedUsers() []*usermodel.User {
	return []*usermodel.User{
		{UserID: "alice", Nickname: "Alice", FaceURL: "https://cdn.lux/a.png", Role: usermodel.RoleUser},
		{UserID: "bob", Nickname: "Bob", FaceURL: "https://cdn.lux/b.png", Role: usermodel.RoleUser},
		{UserID: "marta", Nickname: "Marta", Role: usermodel.RoleAdmin},
		{UserID: "dino", Nickname: "Dino", Role: usermodel.RoleDealer},
	}
}

func newTestServer(t *testing.T) (*Server, *message.MemStore, *userservice.MemStore) {
	t.Helper()
	msgs := message.NewMemStore()
	users := userservice.NewMemStore(seedUsers()...)
	srv := NewServer(ServerConf{}, []byte("test-secret"), msgs, users, nil)
	return srv, msgs, users
}

var connSeq int

// connect 模拟一条已准入的连接（不经过真实 websocket）。
func connect(s *Server, userID, role string) *Client {
	connSeq++
	c := NewClient(fmt.Sprintf("conn-%s-%d", userID, connSeq), userID, role, nil, 64)
	s.Registry().Register(testCtx(), c)
	s.Rooms().Join(userID, c)
	return c
}

func disconnect(s *Server, c *Client) bool {
	s.Rooms().Leave(c.UserID, c)
	return s.Registry().Unregister(testCtx(), c.UserID, c.ConnID)
}

func testCtx() context.Context { return context.Background() }

// recvEvent 等待指定事件帧（跳过其他事件），1 秒超时。
func recvEvent(t *testing.T, c *Client, event string) map[string]any {
	t.Helper()
	return recvEventMatch(t, c, event, nil)
}

func recvEventMatch(t *testing.T, c *Client, event string, match func(map[string]any) bool) map[string]any {
	t.Helper()
	deadline := time.After(1 * time.Second)
	for {
		select {
		case raw := <-c.Send:
			f := decodeFrame(t, raw)
			if f.Event == event && (match == nil || match(f.Data)) {
				return f.Data
			}
		case <-deadline:
			t.Fatalf("no %q frame received in time", event)
			return nil
		}
	}
}

// expectNoEvent 断言窗口期内没有指定事件帧。
func expectNoEvent(t *testing.T, c *Client, event string, window time.Duration) {
	t.Helper()
	deadline := time.After(window)
	for {
		select {
		case raw := <-c.Send:
			f := decodeFrame(t, raw)
			if f.Event == event {
				t.Fatalf("unexpected %q frame: %v", event, f.Data)
			}
		case <-deadline:
			return
		}
	}
}

func decodeFrame(t *testing.T, raw []byte) *Frame {
	t.Helper()
	f := &Frame{}
	require.NoError(t, json.Unmarshal(raw, f))
	return f
}
