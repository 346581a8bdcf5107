package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/service"
	"github.com/rs/zerolog"
)

// Fanout sends every event to Primary and then to each mirror. Only the
// primary's result is returned; mirror failures are logged.
type Fanout struct {
	Primary service.Notifier
	Mirrors []service.Notifier
	Log     zerolog.Logger
}

var _ service.Notifier = (*Fanout)(nil)

func (f *Fanout) mirror(event string, fn func(n service.Notifier) error) {
	for _, m := range f.Mirrors {
		if err := fn(m); err != nil {
			f.Log.Warn().Err(err).Str("event", event).Msg("mirror notify failed")
		}
	}
}

func (f *Fanout) DeliverMessage(ctx context.Context, recipientID uuid.UUID, msg *models.Message) error {
	err := f.Primary.DeliverMessage(ctx, recipientID, msg)
	f.mirror(EventMessage, func(n service.Notifier) error {
		return n.DeliverMessage(ctx, recipientID, msg)
	})
	return err
}

func (f *Fanout) MessageUpdated(ctx context.Context, recipientID uuid.UUID, msg *models.Message) error {
	err := f.Primary.MessageUpdated(ctx, recipientID, msg)
	f.mirror(EventMessageUpdated, func(n service.Notifier) error {
		return n.MessageUpdated(ctx, recipientID, msg)
	})
	return err
}

func (f *Fanout) ReceiptUpdated(ctx context.Context, senderID uuid.UUID, r *models.MessageReceipt) error {
	err := f.Primary.ReceiptUpdated(ctx, senderID, r)
	f.mirror(EventReceipt, func(n service.Notifier) error {
		return n.ReceiptUpdated(ctx, senderID, r)
	})
	return err
}

func (f *Fanout) TypingChanged(ctx context.Context, recipientID, chatID, typerID uuid.UUID, typing bool) error {
	err := f.Primary.TypingChanged(ctx, recipientID, chatID, typerID, typing)
	f.mirror(EventTyping, func(n service.Notifier) error {
		return n.TypingChanged(ctx, recipientID, chatID, typerID, typing)
	})
	return err
}
