package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig 网关进程的全部可调参数，env 前缀 LUX。
type AppConfig struct {
	NodeID   int64  `envconfig:"NODE_ID" default:"1"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	JWTSecret string `envconfig:"JWT_SECRET" default:""`

	// Mongo 为空时退化为内存存储（本地联调用，消息不落盘）
	MongoURI string `envconfig:"MONGO_URI" default:""`
	MongoDB  string `envconfig:"MONGO_DB" default:"luxmarket"`

	// Redis 为空时不写在线状态镜像
	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// NATS 为空时不启动运营事件桥
	NATSURL string `envconfig:"NATS_URL" default:""`

	PresenceTTL   time.Duration `envconfig:"PRESENCE_TTL" default:"2m"`
	SendQueueSize int           `envconfig:"SEND_QUEUE_SIZE" default:"256"`
	FanoutWorkers int           `envconfig:"FANOUT_WORKERS" default:"4"`
	FanoutQueue   int           `envconfig:"FANOUT_QUEUE" default:"1024"`
	WriteTimeout  time.Duration `envconfig:"WRITE_TIMEOUT" default:"5s"`
	PingEvery     time.Duration `envconfig:"PING_EVERY" default:"30s"`
	ReadDeadline  time.Duration `envconfig:"READ_DEADLINE" default:"75s"`
}

var Global AppConfig

// Load 从环境变量填充 Global。
func Load() error {
	return envconfig.Process("LUX", &Global)
}

func GetJwtSecret() []byte {
	return []byte(Global.JWTSecret)
}
