package ws

import "time"

// MessagePing is an application level keepalive. Any inbound frame already
// refreshes presence; the reply carries server time so clients can measure
// round trips and clock skew.
type MessagePing struct {
	ClientTime int64 `json:"ts,omitempty"`
}

func (msg *MessagePing) GetType() string {
	return "ping"
}

func (msg *MessagePing) Process(ctx *MessageContext) error {
	return ctx.Reply("pong", map[string]int64{
		"ts":        msg.ClientTime,
		"server_ts": time.Now().UTC().UnixMilli(),
	})
}

// MessagePong answers a server ping; nothing to do beyond the presence refresh.
type MessagePong struct{}

func (msg *MessagePong) GetType() string {
	return "pong"
}

func (msg *MessagePong) Process(*MessageContext) error {
	return nil
}
