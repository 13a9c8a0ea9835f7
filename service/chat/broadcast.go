package chat

import (
	"time"

	"LuxRelay/logger"
	usermodel "LuxRelay/module/user/model"
)

// Gateway 运营事件的角色门禁转发：订单状态、车辆目录更新。
// 纯转发，不落库（订单/车辆状态在事件发出前已由各自服务持久化）。
type Gateway struct {
	reg    *Registry
	rooms  *Rooms
	fanout *Fanout
}

func NewGateway(reg *Registry, rooms *Rooms, fanout *Fanout) *Gateway {
	return &Gateway{reg: reg, rooms: rooms, fanout: fanout}
}

// HandleOrderUpdate admin/dealer 之外的角色一律 error{Unauthorized}，不广播。
func (g *Gateway) HandleOrderUpdate(c *Client, p *OrderUpdatePayload) {
	if !usermodel.StaffRole(c.Role) {
		g.reject(c)
		return
	}
	g.IngestOrderUpdate(p)
}

// HandleVehicleUpdate 负载原样广播给所有在线连接（含发起者自己）。
func (g *Gateway) HandleVehicleUpdate(c *Client, payload map[string]any) {
	if !usermodel.StaffRole(c.Role) {
		g.reject(c)
		return
	}
	g.IngestVehicleUpdate(payload)
}

// IngestOrderUpdate 无门禁入口：NATS 桥（系统来源）直接走这里。
// order:updated 和 notification:new 都发到目标用户频道——
// 用户此刻不在线就收不到，属设计内的尽力投递。
func (g *Gateway) IngestOrderUpdate(p *OrderUpdatePayload) {
	ts := time.Now().UTC().UnixMilli()

	if payload, err := EncodeFrame(EventOrderUpdated, map[string]any{
		"orderId":   p.OrderID,
		"status":    p.Status,
		"timestamp": ts,
	}); err == nil {
		g.rooms.Publish(p.UserID, payload)
	}

	if payload, err := EncodeFrame(EventNotificationNew, map[string]any{
		"type":      "order_update",
		"orderId":   p.OrderID,
		"status":    p.Status,
		"timestamp": ts,
	}); err == nil {
		g.rooms.Publish(p.UserID, payload)
	}
}

// IngestVehicleUpdate 无门禁入口，负载不做任何加工。
func (g *Gateway) IngestVehicleUpdate(payload map[string]any) {
	data, err := EncodeFrame(EventVehicleUpdated, payload)
	if err != nil {
		logger.Errorf("[gateway] encode vehicle update failed: %v", err)
		return
	}
	g.fanout.Broadcast(g.reg.Clients(), data)
}

func (g *Gateway) reject(c *Client) {
	if payload, err := EncodeFrame(EventError, UnauthorizedPayload()); err == nil {
		c.Enqueue(payload)
	}
}
