package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// PresenceMirror 把网关内存里的在线状态镜像到 Redis，
// 供 CRUD 应用渲染在线徽标，不参与投递决策。
// presence key: lux:presence:<user>，value 为连接ID，TTL 控制在线有效期。
// lastseen key: lux:lastseen:<user>，value 为 Unix 毫秒。
type PresenceMirror struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPresenceMirror(rdb *redis.Client, ttl time.Duration) *PresenceMirror {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &PresenceMirror{rdb: rdb, ttl: ttl}
}

func presenceKey(user string) string { return "lux:presence:" + user }
func lastSeenKey(user string) string { return "lux:lastseen:" + user }

// Online 标记在线并续期
func (m *PresenceMirror) Online(ctx context.Context, user, connID string) error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return errors.Wrap(m.rdb.Set(ctx, presenceKey(user), connID, m.ttl).Err(), "presence online")
}

// Offline 主动下线（删 key）并记录 last seen
func (m *PresenceMirror) Offline(ctx context.Context, user string, lastSeen time.Time) error {
	if m == nil || m.rdb == nil {
		return nil
	}
	pipe := m.rdb.TxPipeline()
	pipe.Del(ctx, presenceKey(user))
	pipe.Set(ctx, lastSeenKey(user), strconv.FormatInt(lastSeen.UnixMilli(), 10), 0)
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "presence offline")
}

// Lookup 查询用户是否在线（返回镜像里的连接ID）
func (m *PresenceMirror) Lookup(ctx context.Context, user string) (connID string, online bool, err error) {
	if m == nil || m.rdb == nil {
		return "", false, nil
	}
	val, err := m.rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "presence lookup")
	}
	return val, true, nil
}
