package main

import (
	"context"
	"net/http"

	"LuxRelay/global/config"
	"LuxRelay/logger"
	message "LuxRelay/module/chat/message"
	userservice "LuxRelay/module/user/service"
	"LuxRelay/service/chat"
	"LuxRelay/service/natsx"
	"LuxRelay/service/storage"
	redisstore "LuxRelay/service/storage/redis"
	ids "LuxRelay/tools/ids"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := config.Load(); err != nil {
		logger.Errorf("load config: %v", err)
		return
	}
	cfg := config.Global
	ids.SetNodeID(cfg.NodeID)

	ctx := context.Background()

	// ===== 存储 =====
	var (
		msgs  message.Store
		users userservice.Store
	)
	if cfg.MongoURI != "" {
		db, err := storage.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Errorf("open mongo: %v", err)
			return
		}
		msgs = message.NewMongoStore(db)
		users = userservice.NewMongoStore(db)
		logger.Infof("stores: mongo db=%s", cfg.MongoDB)
	} else {
		msgs = message.NewMemStore()
		users = userservice.NewMemStore()
		logger.Warnf("stores: in-memory (set LUX_MONGO_URI for durability)")
	}

	var mirror *storage.PresenceMirror
	if cfg.RedisAddr != "" {
		err := redisstore.InitRedis(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Errorf("init redis: %v", err)
			return
		}
		defer func() { _ = redisstore.CloseRedis() }()
		mirror = storage.NewPresenceMirror(redisstore.GetRedis(), cfg.PresenceTTL)
	}

	// ===== 网关 =====
	srv := chat.NewServer(chat.ServerConf{
		SendQueueSize: cfg.SendQueueSize,
		FanoutWorkers: cfg.FanoutWorkers,
		FanoutQueue:   cfg.FanoutQueue,
		WriteTimeout:  cfg.WriteTimeout,
		PingEvery:     cfg.PingEvery,
		ReadDeadline:  cfg.ReadDeadline,
	}, config.GetJwtSecret(), msgs, users, mirror)

	// ===== 运营事件桥 =====
	if cfg.NATSURL != "" {
		nc, err := natsx.Connect(natsx.Config{URL: cfg.NATSURL})
		if err != nil {
			logger.Errorf("connect nats: %v", err)
			return
		}
		defer nc.Close()
		bridge, err := natsx.StartBridge(nc, srv.Gateway())
		if err != nil {
			logger.Errorf("start nats bridge: %v", err)
			return
		}
		defer bridge.Close()
	}

	// ===== HTTP =====
	r := gin.Default()
	r.GET("/ws", srv.HandleWS)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "online": srv.Registry().Len()})
	})

	logger.Infof("relay listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Errorf("http server: %v", err)
	}
}
