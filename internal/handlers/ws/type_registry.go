package ws

import (
	"reflect"
	"sort"
)

// inboundEvents is every event a client may send on the socket. Sends,
// acks and reads go through the delivery engine; typing, heartbeat and the
// ping/pong pair only touch presence.
var inboundEvents = []Message{
	&MessageSend{},
	&MessageAck{},
	&MessageRead{},
	&MessageTyping{},
	&MessageHeartbeat{},
	&MessagePing{},
	&MessagePong{},
}

// typeRegistry maps the frame "type" field to the event struct decoded from
// its payload.
var typeRegistry = map[string]reflect.Type{}

func init() {
	for _, evt := range inboundEvents {
		RegisterType(evt)
	}
}

// RegisterType makes msg decodable by its wire type. A later registration
// under the same type replaces the earlier one.
func RegisterType(msg Message) {
	typeRegistry[msg.GetType()] = reflect.TypeOf(msg).Elem()
}

// RegisteredTypes lists the accepted wire types in sorted order.
func RegisteredTypes() []string {
	names := make([]string, 0, len(typeRegistry))
	for name := range typeRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
