package model

import "time"

// ===== 消息类型 =====
//
// 对应市场端的五类聊天内容：普通文本、图片、附件、车辆询价、报价单。
const (
	MsgTypeText    = "text"
	MsgTypeImage   = "image"
	MsgTypeFile    = "file"
	MsgTypeInquiry = "inquiry"
	MsgTypeQuote   = "quote"

	MsgTableName = "messages"
)

func ValidMsgType(t string) bool {
	switch t {
	case MsgTypeText, MsgTypeImage, MsgTypeFile, MsgTypeInquiry, MsgTypeQuote:
		return true
	}
	return false
}

// Message 一条买家/经纪人之间的聊天消息。
// 落库后除 Read/ReadAt 外不可变；Read 置位后 ReadAt 必非空且 >= CreatedAt。
type Message struct {
	ID         string            `bson:"_id" json:"id"`
	SenderID   string            `bson:"sender_id" json:"senderId"`
	ReceiverID string            `bson:"receiver_id" json:"receiverId"`
	Content    string            `bson:"content" json:"content"`
	Type       string            `bson:"type" json:"type"`
	Read       bool              `bson:"read" json:"read"`
	ReadAt     *time.Time        `bson:"read_at,omitempty" json:"readAt,omitempty"`
	Metadata   map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt  time.Time         `bson:"created_at" json:"createdAt"`
}
