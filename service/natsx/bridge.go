package natsx

import (
	"encoding/json"

	"LuxRelay/logger"
	"LuxRelay/service/chat"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// 订单/车辆 CRUD 服务发布的主题
const (
	SubjectOrderUpdate   = "lux.order.update"
	SubjectVehicleUpdate = "lux.vehicle.update"
)

// Bridge 把后端服务发布的运营事件注入广播网关（系统来源，免角色门禁）。
// 只进不出：不缓冲、不重放，订阅时刻之前的事件直接错过。
type Bridge struct {
	nc   *nats.Conn
	subs []*nats.Subscription
}

func StartBridge(nc *nats.Conn, gw *chat.Gateway) (*Bridge, error) {
	b := &Bridge{nc: nc}

	sub, err := nc.Subscribe(SubjectOrderUpdate, func(m *nats.Msg) {
		var p chat.OrderUpdatePayload
		if err := json.Unmarshal(m.Data, &p); err != nil {
			logger.Warnf("[natsx] bad order event: %v", err)
			return
		}
		if p.UserID == "" {
			logger.Warnf("[natsx] order event missing userId order=%s", p.OrderID)
			return
		}
		gw.IngestOrderUpdate(&p)
	})
	if err != nil {
		return nil, errors.Wrap(err, "subscribe order updates")
	}
	b.subs = append(b.subs, sub)

	sub, err = nc.Subscribe(SubjectVehicleUpdate, func(m *nats.Msg) {
		var payload map[string]any
		if err := json.Unmarshal(m.Data, &payload); err != nil {
			logger.Warnf("[natsx] bad vehicle event: %v", err)
			return
		}
		gw.IngestVehicleUpdate(payload)
	})
	if err != nil {
		b.Close()
		return nil, errors.Wrap(err, "subscribe vehicle updates")
	}
	b.subs = append(b.subs, sub)

	logger.Infof("[natsx] bridge subscribed: %s, %s", SubjectOrderUpdate, SubjectVehicleUpdate)
	return b, nil
}

func (b *Bridge) Close() {
	for _, s := range b.subs {
		_ = s.Unsubscribe()
	}
}
