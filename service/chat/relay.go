package chat

import (
	"context"
	"time"

	"LuxRelay/logger"
	message "LuxRelay/module/chat/message"
	usersvc "LuxRelay/module/user/service"
	errs "LuxRelay/tools/errs"

	"github.com/pkg/errors"
)

// Relay 聊天事件编排：send / read / typing。
// 所有失败都只影响当前请求（message:error 或静默丢弃），不会断开连接。
type Relay struct {
	reg   *Registry
	rooms *Rooms
	msgs  message.Store
	users usersvc.Store
}

func NewRelay(reg *Registry, rooms *Rooms, msgs message.Store, users usersvc.Store) *Relay {
	return &Relay{reg: reg, rooms: rooms, msgs: msgs, users: users}
}

// HandleSend 投递顺序：落库 -> 在线直投 message:received ->
// 无论在线与否补一条 notification:new 到接收者频道 -> 给发送者回 message:sent。
// 落库失败整个流程中止，只回 message:error（对调用方原子）。
func (rl *Relay) HandleSend(ctx context.Context, c *Client, p *SendPayload) {
	if p.ReceiverID == "" {
		rl.sendError(c, errs.ErrMissingReceiver)
		return
	}
	if p.Content == "" {
		rl.sendError(c, errs.ErrEmptyContent)
		return
	}

	msg, err := rl.msgs.Create(ctx, c.UserID, p.ReceiverID, p.Content, p.Type, p.Metadata)
	if err != nil {
		logger.Errorf("[relay] persist message failed sender=%s err=%v", c.UserID, err)
		rl.sendError(c, errs.NewCodeError(errs.CodeStoreFailure, "message could not be saved"))
		return
	}

	enriched := EnrichMessage(msg, rl.senderProfile(ctx, c))
	payload, err := EncodeFrame(EventMessageReceived, enriched)
	if err != nil {
		logger.Errorf("[relay] encode message failed id=%s err=%v", msg.ID, err)
		return
	}

	if rc, online := rl.reg.Lookup(p.ReceiverID); online {
		rc.Enqueue(payload)
	}

	rl.notify(p.ReceiverID, map[string]any{
		"type":      "message",
		"from":      enriched.Sender.Nickname,
		"timestamp": msg.CreatedAt.UnixMilli(),
	})

	if echo, err := EncodeFrame(EventMessageSent, enriched); err == nil {
		c.Enqueue(echo)
	}
}

// HandleRead 非收件人或消息不存在时静默忽略（不回错误）。
// 重复已读会刷新 read_at；read 永不回翻。
func (rl *Relay) HandleRead(ctx context.Context, c *Client, p *ReadPayload) {
	if p.MessageID == "" {
		return
	}
	msg, err := rl.msgs.GetByID(ctx, p.MessageID)
	if errors.Is(err, message.ErrNotFound) {
		return
	}
	if err != nil {
		logger.Errorf("[relay] load message failed id=%s err=%v", p.MessageID, err)
		return
	}
	if msg.ReceiverID != c.UserID {
		// 越权标注当作无事发生
		return
	}

	readAt := time.Now().UTC()
	if err := rl.msgs.MarkRead(ctx, msg.ID, readAt); err != nil {
		logger.Errorf("[relay] mark read failed id=%s err=%v", msg.ID, err)
		return
	}

	if sc, online := rl.reg.Lookup(msg.SenderID); online {
		if payload, err := EncodeFrame(EventMessageReadAck, map[string]any{
			"messageId": msg.ID,
			"readAt":    readAt.UnixMilli(),
		}); err == nil {
			sc.Enqueue(payload)
		}
	}
}

// HandleTyping 纯瞬态：接收者不在线直接丢弃。
func (rl *Relay) HandleTyping(_ context.Context, c *Client, started bool, p *TypingPayload) {
	if p.ReceiverID == "" {
		return
	}
	rc, online := rl.reg.Lookup(p.ReceiverID)
	if !online {
		return
	}
	event := EventTypingStopped
	if started {
		event = EventTypingStarted
	}
	if payload, err := EncodeFrame(event, map[string]any{"userId": c.UserID}); err == nil {
		rc.Enqueue(payload)
	}
}

func (rl *Relay) senderProfile(ctx context.Context, c *Client) SenderProfile {
	u, err := rl.users.FindByID(ctx, c.UserID)
	if err != nil {
		logger.Warnf("[relay] sender profile lookup failed user=%s err=%v", c.UserID, err)
		return SenderProfile{ID: c.UserID, Role: c.Role}
	}
	return ProfileOf(u)
}

func (rl *Relay) notify(userID string, data map[string]any) {
	payload, err := EncodeFrame(EventNotificationNew, data)
	if err != nil {
		logger.Errorf("[relay] encode notification failed: %v", err)
		return
	}
	rl.rooms.Publish(userID, payload)
}

func (rl *Relay) sendError(c *Client, err error) {
	if payload, eerr := EncodeFrame(EventMessageError, ErrorPayload(err)); eerr == nil {
		c.Enqueue(payload)
	}
}
