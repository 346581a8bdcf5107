package ws

import (
	"context"

	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/notify"
	"github.com/noteduco342/relay-backend/internal/service"
)

// flushBatchSize caps the events per batch frame.
const flushBatchSize = 50

// FlushOutbox drains the user's outbox onto the socket in batch frames.
// Receipts stay at sent until the client acks each message. If a write fails
// the unsent entries go back to the head of the outbox.
func FlushOutbox(ctx *MessageContext) (int, error) {
	pending, err := ctx.Delivery.Drain(ctx.Ctx, ctx.UserID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for start := 0; start < len(pending); start += flushBatchSize {
		end := min(start+flushBatchSize, len(pending))
		chunk := pending[start:end]

		events := make([]notify.Event, 0, len(chunk))
		for _, p := range chunk {
			if p.Ref.Kind == models.RefGap {
				events = append(events, notify.GapEvent(p.Ref.Dropped))
				continue
			}
			events = append(events, notify.MessageEvent(p.Message))
		}

		if err := ctx.Client.WriteJSON(notify.Batch(events)); err != nil {
			ctx.Delivery.Requeue(context.WithoutCancel(ctx.Ctx), ctx.UserID, refsOf(pending[start:]))
			return sent, err
		}
		sent += len(chunk)
	}
	return sent, nil
}

func refsOf(pending []service.PendingDelivery) []models.MessageRef {
	refs := make([]models.MessageRef, 0, len(pending))
	for _, p := range pending {
		refs = append(refs, p.Ref)
	}
	return refs
}
