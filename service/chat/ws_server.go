package chat

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"LuxRelay/logger"
	ids "LuxRelay/tools/ids"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS 连接生命周期：升级 -> 准入 -> 登记 -> 读循环 -> 注销。
// 被拒的连接收到一条 error 帧即关闭，不会进任何事件处理器。
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade failed: %v", err)
		return
	}

	ctx := c.Request.Context()
	userID, role, aerr := s.gate.Admit(ctx, connToken(c.Request))
	if aerr != nil {
		logger.Infof("[ws] admission rejected remote=%s err=%v", ws.RemoteAddr(), aerr)
		if payload, eerr := EncodeFrame(EventError, ErrorPayload(aerr)); eerr == nil {
			_ = ws.SetWriteDeadline(time.Now().Add(s.conf.WriteTimeout))
			_ = ws.WriteMessage(websocket.TextMessage, payload)
		}
		_ = ws.Close()
		return
	}

	client := NewClient(ids.GenerateString(), userID, role, ws, s.conf.SendQueueSize)
	go client.WritePump(s.conf.WriteTimeout, s.conf.PingEvery)

	s.reg.Register(ctx, client)
	s.rooms.Join(userID, client)
	logger.Infof("[ws] connected user=%s role=%s conn=%s", userID, role, client.ConnID)

	ws.SetReadLimit(1 << 20) // 1MB
	_ = ws.SetReadDeadline(time.Now().Add(s.conf.ReadDeadline))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.conf.ReadDeadline))
	})

	// ---- 读循环：只读；写全部经 Client 的写协程 ----
	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed user=%s conn=%s", userID, client.ConnID)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout user=%s conn=%s", userID, client.ConnID)
			} else {
				logger.Infof("[ws] read err user=%s conn=%s err=%v", userID, client.ConnID, rerr)
			}
			break
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrame(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[ws] bad frame user=%s err=%v sample=%q", userID, perr, sample)
			continue
		}

		if derr := s.DispatchFrame(context.Background(), client, frame); derr != nil {
			logger.Infof("[ws] dispatch event=%s user=%s err=%v", frame.Event, userID, derr)
		}
	}

	// ---- 退出阶段：离开频道、带连接ID守卫注销、收尾写协程 ----
	s.rooms.Leave(userID, client)
	if s.reg.Unregister(context.Background(), userID, client.ConnID) {
		logger.Infof("[ws] disconnected user=%s conn=%s", userID, client.ConnID)
	} else {
		// 已被同用户新连接顶掉：不发 user:offline
		logger.Infof("[ws] stale disconnect ignored user=%s conn=%s", userID, client.ConnID)
	}
	client.Close()
}

// connToken 握手凭证：?token= 或 Authorization: Bearer。
func connToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
