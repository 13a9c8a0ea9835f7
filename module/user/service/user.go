package service

import (
	"context"
	"time"

	"LuxRelay/module/user/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("user not found")

// Store 用户主档协作方：中继只读资料、回写在线快照。
type Store interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	MarkOnline(ctx context.Context, id string) error
	MarkOffline(ctx context.Context, id string, lastSeen time.Time) error
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(model.UserTableName)}
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.coll.FindOne(ctx, bson.M{"user_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return &u, nil
}

func (s *MongoStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"user_id": id})
	if err != nil {
		return false, errors.Wrap(err, "count user")
	}
	return n > 0, nil
}

func (s *MongoStore) MarkOnline(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"user_id": id},
		bson.M{"$set": bson.M{"is_online": true, "last_seen_at": now, "update_time": now}},
	)
	return errors.Wrap(err, "mark user online")
}

func (s *MongoStore) MarkOffline(ctx context.Context, id string, lastSeen time.Time) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"user_id": id},
		bson.M{"$set": bson.M{"is_online": false, "last_seen_at": lastSeen, "update_time": time.Now().UTC()}},
	)
	return errors.Wrap(err, "mark user offline")
}
