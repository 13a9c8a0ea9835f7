package message

import (
	"context"
	"time"

	"LuxRelay/module/chat/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("message not found")

// Store 消息存储适配器：中继只依赖这三个调用。
type Store interface {
	Create(ctx context.Context, senderID, receiverID, content, msgType string, metadata map[string]string) (*model.Message, error)
	GetByID(ctx context.Context, id string) (*model.Message, error)
	// MarkRead 将消息置为已读。重复调用会刷新 read_at（保留线上行为），
	// read 不会从 true 翻回 false。
	MarkRead(ctx context.Context, id string, at time.Time) error
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(model.MsgTableName)}
}

func (s *MongoStore) Create(ctx context.Context, senderID, receiverID, content, msgType string, metadata map[string]string) (*model.Message, error) {
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
	if _, err := s.coll.InsertOne(ctx, msg); err != nil {
		return nil, errors.Wrap(err, "insert message")
	}
	return msg, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find message")
	}
	return &msg, nil
}

func (s *MongoStore) MarkRead(ctx context.Context, id string, at time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true, "read_at": at}},
	)
	if err != nil {
		return errors.Wrap(err, "mark message read")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
