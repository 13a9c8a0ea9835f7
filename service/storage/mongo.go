package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OpenMongo 建立 Mongo 连接并返回业务库句柄。
// 单进程网关：启动时连不上直接报错退出，不做异步重连。
func OpenMongo(ctx context.Context, uri, db string) (*mongo.Database, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(cctx, nil); err != nil {
		return nil, errors.Wrap(err, "ping mongo")
	}
	return client.Database(db), nil
}
