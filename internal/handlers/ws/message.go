package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/service"
	"github.com/rs/zerolog"
)

// MessageContext provides all dependencies needed for message processing
type MessageContext struct {
	Ctx      context.Context
	UserID   uuid.UUID
	Client   *ClientConnection
	Hub      *Hub
	Delivery *service.DeliveryService
	Receipts *service.ReceiptService
	Presence *service.PresenceService
	Log      zerolog.Logger
}

// Reply writes a typed frame back to the socket the event came from.
func (ctx *MessageContext) Reply(eventType string, payload interface{}) error {
	return ctx.Client.WriteJSON(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
}

// Message interface for all WebSocket message types
type Message interface {
	GetType() string
	Process(ctx *MessageContext) error
}

// SerializedMessage is the wire format wrapper
type SerializedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorResponse is sent when message processing fails
type ErrorResponse struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func CreateMessage(msgType string, registry map[string]reflect.Type) (Message, error) {
	t, ok := registry[msgType]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msgType)
	}
	return reflect.New(t).Interface().(Message), nil
}

// SendError sends an error response to the client
func SendError(client *ClientConnection, code, message, details string) error {
	return client.WriteJSON(ErrorResponse{
		Type:    "error",
		Error:   message,
		Code:    code,
		Details: details,
	})
}
