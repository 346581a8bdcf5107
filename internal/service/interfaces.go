package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mock_interfaces_test.go -package=service

// Notifier pushes events to connected clients. DeliverMessage returning an
// error means the recipient did not get the message and it must be queued.
type Notifier interface {
	DeliverMessage(ctx context.Context, recipientID uuid.UUID, msg *models.Message) error
	MessageUpdated(ctx context.Context, recipientID uuid.UUID, msg *models.Message) error
	ReceiptUpdated(ctx context.Context, senderID uuid.UUID, receipt *models.MessageReceipt) error
	TypingChanged(ctx context.Context, recipientID, chatID, typerID uuid.UUID, typing bool) error
}

// Outbox holds message references for recipients that could not be reached.
type Outbox interface {
	Enqueue(ctx context.Context, userID uuid.UUID, ref models.MessageRef) error
	Drain(ctx context.Context, userID uuid.UUID) ([]models.MessageRef, error)
	// Requeue returns drained refs to the head of the queue, oldest first.
	Requeue(ctx context.Context, userID uuid.UUID, refs []models.MessageRef) error
	Len(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Presence is the ephemeral online/typing state. Implementations never fail
// the caller.
type Presence interface {
	MarkOnline(ctx context.Context, userID uuid.UUID)
	MarkOffline(ctx context.Context, userID uuid.UUID)
	IsOnline(ctx context.Context, userID uuid.UUID) bool
	LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, bool)
	SetTyping(ctx context.Context, chatID, userID uuid.UUID, isTyping bool)
	TypingUsers(ctx context.Context, chatID uuid.UUID) []uuid.UUID
}
