package chat

import (
	"context"
	"time"

	message "LuxRelay/module/chat/message"
	usersvc "LuxRelay/module/user/service"
	"LuxRelay/service/storage"
)

// ===== 配置 =====

type ServerConf struct {
	SendQueueSize int           // 每连接发送队列长度
	FanoutWorkers int           // 广播池 worker 数
	FanoutQueue   int           // 广播池队列长度
	WriteTimeout  time.Duration // 单帧写超时
	PingEvery     time.Duration // 心跳间隔
	ReadDeadline  time.Duration // 读超时（pong 续期）
}

func (c *ServerConf) norm() {
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
	if c.FanoutWorkers <= 0 {
		c.FanoutWorkers = 4
	}
	if c.FanoutQueue <= 0 {
		c.FanoutQueue = 1024
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.PingEvery <= 0 {
		c.PingEvery = 30 * time.Second
	}
	if c.ReadDeadline <= 0 {
		c.ReadDeadline = 75 * time.Second
	}
}

// Server 网关装配：准入 -> 在线表 -> 中继/运营广播。
type Server struct {
	conf ServerConf

	gate    *Gatekeeper
	reg     *Registry
	rooms   *Rooms
	fanout  *Fanout
	relay   *Relay
	gateway *Gateway
	disp    *Dispatcher
}

func NewServer(conf ServerConf, secret []byte, msgs message.Store, users usersvc.Store, mirror *storage.PresenceMirror) *Server {
	conf.norm()

	fanout := NewFanout(conf.FanoutWorkers, conf.FanoutQueue)
	reg := NewRegistry(users, mirror, fanout)
	rooms := NewRooms()

	s := &Server{
		conf:    conf,
		gate:    NewGatekeeper(secret, users),
		reg:     reg,
		rooms:   rooms,
		fanout:  fanout,
		relay:   NewRelay(reg, rooms, msgs, users),
		gateway: NewGateway(reg, rooms, fanout),
		disp:    NewDispatcher(),
	}
	s.registerHandlers()
	return s
}

func (s *Server) Registry() *Registry { return s.reg }
func (s *Server) Rooms() *Rooms       { return s.rooms }
func (s *Server) Gateway() *Gateway   { return s.gateway }

func (s *Server) registerHandlers() {
	s.disp.Register(EventMessageSend, func(ctx context.Context, c *Client, f *Frame) error {
		p, err := DecodeSend(f)
		if err != nil {
			return err
		}
		s.relay.HandleSend(ctx, c, p)
		return nil
	})
	s.disp.Register(EventMessageRead, func(ctx context.Context, c *Client, f *Frame) error {
		p, err := DecodeRead(f)
		if err != nil {
			return err
		}
		s.relay.HandleRead(ctx, c, p)
		return nil
	})
	s.disp.Register(EventTypingStart, func(ctx context.Context, c *Client, f *Frame) error {
		p, err := DecodeTyping(f)
		if err != nil {
			return err
		}
		s.relay.HandleTyping(ctx, c, true, p)
		return nil
	})
	s.disp.Register(EventTypingStop, func(ctx context.Context, c *Client, f *Frame) error {
		p, err := DecodeTyping(f)
		if err != nil {
			return err
		}
		s.relay.HandleTyping(ctx, c, false, p)
		return nil
	})
	s.disp.Register(EventOrderUpdate, func(_ context.Context, c *Client, f *Frame) error {
		p, err := DecodeOrderUpdate(f)
		if err != nil {
			return err
		}
		s.gateway.HandleOrderUpdate(c, p)
		return nil
	})
	s.disp.Register(EventVehicleUpdate, func(_ context.Context, c *Client, f *Frame) error {
		s.gateway.HandleVehicleUpdate(c, f.Data)
		return nil
	})
}

func (s *Server) DispatchFrame(ctx context.Context, c *Client, f *Frame) error {
	return s.disp.Dispatch(ctx, c, f)
}
