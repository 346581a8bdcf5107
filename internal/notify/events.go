// Package notify builds the events pushed to clients and the notifiers that
// carry them beyond the local websocket hub.
package notify

import (
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/models"
)

const (
	EventMessage        = "message"
	EventMessageUpdated = "message_updated"
	EventReceipt        = "receipt"
	EventTyping         = "typing"
	EventBatch          = "batch"
	EventGap            = "gap"
)

// Event is the JSON envelope every server-pushed frame uses.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type TypingPayload struct {
	ChatID uuid.UUID `json:"chat_id"`
	UserID uuid.UUID `json:"user_id"`
	Typing bool      `json:"typing"`
}

type ReceiptPayload struct {
	MessageID   uuid.UUID            `json:"message_id"`
	ChatID      uuid.UUID            `json:"chat_id"`
	UserID      uuid.UUID            `json:"user_id"`
	Seq         int64                `json:"seq"`
	Status      models.ReceiptStatus `json:"status"`
	DeliveredAt *time.Time           `json:"delivered_at,omitempty"`
	ReadAt      *time.Time           `json:"read_at,omitempty"`
}

type GapPayload struct {
	Dropped int64 `json:"dropped"`
}

func MessageEvent(msg *models.Message) Event {
	return Event{Type: EventMessage, Payload: msg.ToResponse()}
}

func MessageUpdatedEvent(msg *models.Message) Event {
	return Event{Type: EventMessageUpdated, Payload: msg.ToResponse()}
}

func ReceiptEvent(r *models.MessageReceipt) Event {
	return Event{Type: EventReceipt, Payload: ReceiptPayload{
		MessageID:   r.MessageID,
		ChatID:      r.ChatID,
		UserID:      r.UserID,
		Seq:         r.Seq,
		Status:      r.Status,
		DeliveredAt: r.DeliveredAt,
		ReadAt:      r.ReadAt,
	}}
}

func TypingEvent(chatID, typerID uuid.UUID, typing bool) Event {
	return Event{Type: EventTyping, Payload: TypingPayload{ChatID: chatID, UserID: typerID, Typing: typing}}
}

func GapEvent(dropped int64) Event {
	return Event{Type: EventGap, Payload: GapPayload{Dropped: dropped}}
}

// Batch wraps several events into one frame, for outbox flushes.
func Batch(events []Event) map[string]interface{} {
	return map[string]interface{}{
		"type":     EventBatch,
		"messages": events,
		"count":    len(events),
	}
}
