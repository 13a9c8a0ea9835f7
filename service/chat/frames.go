package chat

import (
	"encoding/json"
	"fmt"
	"time"

	chatmodel "LuxRelay/module/chat/model"
	usermodel "LuxRelay/module/user/model"
	decode "LuxRelay/tools/decode"
	errs "LuxRelay/tools/errs"
)

// ===== 事件名（线协议，与前端约定，不可改名） =====

const (
	// client -> server
	EventMessageSend   = "message:send"
	EventMessageRead   = "message:read"
	EventTypingStart   = "typing:start"
	EventTypingStop    = "typing:stop"
	EventOrderUpdate   = "order:update"
	EventVehicleUpdate = "vehicle:update"

	// server -> client
	EventMessageSent     = "message:sent"
	EventMessageReceived = "message:received"
	EventMessageError    = "message:error"
	EventMessageReadAck  = "message:read"
	EventTypingStarted   = "typing:started"
	EventTypingStopped   = "typing:stopped"
	EventOrderUpdated    = "order:updated"
	EventVehicleUpdated  = "vehicle:updated"
	EventUserOnline      = "user:online"
	EventUserOffline     = "user:offline"
	EventNotificationNew = "notification:new"
	EventError           = "error"
)

// Frame 一条事件帧：{"event": "...", "data": {...}}
type Frame struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	f := &Frame{}
	if err := json.Unmarshal(raw, f); err != nil {
		return nil, fmt.Errorf("unmarshal frame failed: %w", err)
	}
	if f.Event == "" {
		return nil, fmt.Errorf("frame missing event name")
	}
	return f, nil
}

func EncodeFrame(event string, data any) ([]byte, error) {
	return json.Marshal(map[string]any{"event": event, "data": data})
}

// ===== 入站负载 =====

type SendPayload struct {
	ReceiverID string            `json:"receiverId"`
	Content    string            `json:"content"`
	Type       string            `json:"type"`
	Metadata   map[string]string `json:"metadata"`
}

type ReadPayload struct {
	MessageID string `json:"messageId"`
}

type TypingPayload struct {
	ReceiverID string `json:"receiverId"`
}

type OrderUpdatePayload struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	UserID  string `json:"userId"`
}

func DecodeSend(f *Frame) (*SendPayload, error)     { return decode.DecodeMap[SendPayload](f.Data) }
func DecodeRead(f *Frame) (*ReadPayload, error)     { return decode.DecodeMap[ReadPayload](f.Data) }
func DecodeTyping(f *Frame) (*TypingPayload, error) { return decode.DecodeMap[TypingPayload](f.Data) }
func DecodeOrderUpdate(f *Frame) (*OrderUpdatePayload, error) {
	return decode.DecodeMap[OrderUpdatePayload](f.Data)
}

// ===== 出站负载 =====

// SenderProfile 附在消息上的发送者最小资料。
type SenderProfile struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	FaceURL  string `json:"faceUrl"`
	Role     string `json:"role"`
}

func ProfileOf(u *usermodel.User) SenderProfile {
	return SenderProfile{ID: u.UserID, Nickname: u.Nickname, FaceURL: u.FaceURL, Role: u.Role}
}

// EnrichedMessage message:sent / message:received 的负载：消息本体 + 发送者资料。
type EnrichedMessage struct {
	chatmodel.Message
	Sender SenderProfile `json:"sender"`
}

func EnrichMessage(msg *chatmodel.Message, sender SenderProfile) *EnrichedMessage {
	return &EnrichedMessage{Message: *msg, Sender: sender}
}

// ErrorPayload message:error / error 的负载。
func ErrorPayload(err error) map[string]any {
	if ce, ok := err.(*errs.CodeError); ok {
		return map[string]any{"error": ce.Msg, "code": ce.Code}
	}
	return map[string]any{"error": err.Error(), "code": errs.CodeOf(err)}
}

// UnauthorizedPayload 权限拒绝统一用 {message:"Unauthorized"}。
func UnauthorizedPayload() map[string]any {
	return map[string]any{"message": "Unauthorized"}
}

type presenceEvent struct {
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp,omitempty"`
	LastSeen  int64  `json:"lastSeen,omitempty"`
}

func onlinePayload(userID string, at time.Time) presenceEvent {
	return presenceEvent{UserID: userID, Timestamp: at.UnixMilli()}
}

func offlinePayload(userID string, lastSeen time.Time) presenceEvent {
	return presenceEvent{UserID: userID, LastSeen: lastSeen.UnixMilli()}
}
