package chat

import (
	"sync"
	"time"

	"LuxRelay/logger"

	"github.com/gorilla/websocket"
)

// Client represents a user session connected to the gateway.
// A single writer goroutine drains Send; everything else enqueues.
type Client struct {
	ConnID string          // Unique connection ID (unique within the local gateway)
	UserID string          // User ID (determined after admission)
	Role   string          // user / admin / dealer
	WS     *websocket.Conn // WebSocket connection object (nil in tests)
	Send   chan []byte     // Outbound message queue (consumed by a single writer goroutine)

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient creates a new client connection object.
func NewClient(connID, userID, role string, ws *websocket.Conn, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 256
	}
	return &Client{
		ConnID: connID,
		UserID: userID,
		Role:   role,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Enqueue 非阻塞投递；慢客户端直接丢帧（由写协程断开兜底）。
func (c *Client) Enqueue(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		logger.Warnf("[client] send queue full, drop frame user=%s conn=%s", c.UserID, c.ConnID)
		return false
	}
}

// Close 停止写协程并关闭底层连接（幂等）。
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.WS != nil {
			_ = c.WS.Close()
		}
	})
}

// WritePump 单写协程：Send 队列 + 周期 ping。
// gorilla 的 WriteMessage 不能并发调用，所有写都必须走这里。
func (c *Client) WritePump(writeTimeout, pingEvery time.Duration) {
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.Send:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.WS.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Infof("[client] write failed user=%s conn=%s err=%v", c.UserID, c.ConnID, err)
				return
			}
		case <-ticker.C:
			if err := c.WS.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
