package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/noteduco342/relay-backend/internal/cache"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/noteduco342/relay-backend/internal/validation"
	"github.com/rs/zerolog"
)

type SendMessageInput struct {
	ChatID   uuid.UUID          `json:"-"`
	SenderID uuid.UUID          `json:"-"`
	Type     models.MessageType `json:"type"`
	Content  string             `json:"content"`
	ReplyTo  *uuid.UUID         `json:"reply_to"`
	ClientID *string            `json:"client_id"`
}

// PendingDelivery is one drained outbox entry. Message is nil for gap markers.
type PendingDelivery struct {
	Ref     models.MessageRef
	Message *models.Message
}

type DeliveryService struct {
	store    *repository.Store
	runner   *StoreRunner
	ordering *OrderingAuthority
	receipts *ReceiptService
	presence Presence
	notifier Notifier
	outbox   Outbox
	pages    *cache.MessageCache

	maxContentLength int
	log              zerolog.Logger
	now              func() time.Time
}

type DeliveryDeps struct {
	Store    *repository.Store
	Runner   *StoreRunner
	Ordering *OrderingAuthority
	Receipts *ReceiptService
	Presence Presence
	Notifier Notifier
	Outbox   Outbox
	// Pages is optional.
	Pages *cache.MessageCache

	MaxContentLength int
	Log              zerolog.Logger
}

func NewDeliveryService(d DeliveryDeps) *DeliveryService {
	if d.Ordering == nil {
		d.Ordering = NewOrderingAuthority()
	}
	if d.MaxContentLength <= 0 {
		d.MaxContentLength = validation.DefaultMaxMessageLength
	}
	return &DeliveryService{
		store:            d.Store,
		runner:           d.Runner,
		ordering:         d.Ordering,
		receipts:         d.Receipts,
		presence:         d.Presence,
		notifier:         d.Notifier,
		outbox:           d.Outbox,
		pages:            d.Pages,
		maxContentLength: d.MaxContentLength,
		log:              d.Log.With().Str("component", "delivery").Logger(),
		now:              utcNow,
	}
}

// SendMessage stores a message in its chat and fans it out to the other
// active participants. The message, the chat's last_message_at and every
// recipient's sent receipt commit together; delivery happens after commit
// and never undoes the send.
func (s *DeliveryService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if _, err := participant(ctx, s.runner, s.store, in.ChatID, in.SenderID, true); err != nil {
		return nil, err
	}

	if in.Type == "" {
		in.Type = models.TextMessage
	}
	if err := validation.ValidateMessageType(in.Type); err != nil {
		return nil, err
	}
	if err := validation.ValidateContent(in.Content, s.maxContentLength); err != nil {
		return nil, err
	}
	if in.ClientID != nil && *in.ClientID == "" {
		in.ClientID = nil
	}

	if in.ReplyTo != nil {
		if err := s.validateReply(ctx, in.ChatID, *in.ReplyTo); err != nil {
			return nil, err
		}
	}

	if existing, err := s.findDuplicate(ctx, in); err != nil || existing != nil {
		return existing, err
	}

	msg, recipients, err := s.persist(ctx, in)
	if repository.IsDuplicate(err) && in.ClientID != nil {
		// Lost a race with a retry of the same request.
		if existing, ferr := s.findDuplicate(ctx, in); ferr == nil && existing != nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("chat_id", msg.ChatID.String()).
		Str("message_id", msg.ID.String()).
		Int64("seq", msg.Seq).
		Int("recipients", len(recipients)).
		Msg("message stored")

	// Past this point the send is durable; the caller going away must not
	// stop the fan-out.
	fanCtx := context.WithoutCancel(ctx)
	s.invalidatePage(fanCtx, msg.ChatID)
	s.fanOut(fanCtx, msg, recipients)
	return msg, nil
}

func (s *DeliveryService) validateReply(ctx context.Context, chatID, replyTo uuid.UUID) error {
	var parent *models.Message
	err := s.runner.Run(ctx, "messages.FindByID", func(ctx context.Context) error {
		var err error
		parent, err = s.store.Messages.FindByID(ctx, replyTo)
		return err
	})
	if repository.IsNotFound(err) {
		return apperrors.ErrInvalidReply
	}
	if err != nil {
		return err
	}
	if parent.ChatID != chatID {
		return apperrors.ErrInvalidReply
	}
	return nil
}

func (s *DeliveryService) findDuplicate(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if in.ClientID == nil {
		return nil, nil
	}
	var existing *models.Message
	err := s.runner.Run(ctx, "messages.FindByClientID", func(ctx context.Context) error {
		var err error
		existing, err = s.store.Messages.FindByClientID(ctx, in.SenderID, *in.ClientID)
		return err
	})
	if repository.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if existing.ChatID != in.ChatID {
		return nil, apperrors.InvalidArg("client_id already used in another chat")
	}
	return existing, nil
}

// persist runs the transactional part of a send while holding the chat's
// ordering stripe.
func (s *DeliveryService) persist(ctx context.Context, in SendMessageInput) (*models.Message, []uuid.UUID, error) {
	unlock := s.ordering.Lock(in.ChatID)
	defer unlock()

	var (
		msg        *models.Message
		recipients []uuid.UUID
	)
	err := s.runner.Run(ctx, "delivery.SendMessage", func(ctx context.Context) error {
		return s.store.Transaction(ctx, func(tx *repository.Store) error {
			seq, err := s.ordering.NextSequence(ctx, tx, in.ChatID)
			if err != nil {
				return err
			}

			msg = &models.Message{
				ID:        uuid.New(),
				ChatID:    in.ChatID,
				SenderID:  in.SenderID,
				Seq:       seq,
				ClientID:  in.ClientID,
				Type:      in.Type,
				Content:   in.Content,
				ReplyTo:   in.ReplyTo,
				CreatedAt: s.now(),
			}
			if err := tx.Messages.Create(ctx, msg); err != nil {
				return err
			}
			if err := tx.Chats.TouchLastMessage(ctx, in.ChatID, msg.CreatedAt); err != nil {
				return err
			}

			participants, err := tx.Chats.ListParticipants(ctx, in.ChatID, true)
			if err != nil {
				return err
			}
			recipients = recipients[:0]
			for _, p := range participants {
				if p.UserID != in.SenderID {
					recipients = append(recipients, p.UserID)
				}
			}
			return s.receipts.initializeWith(ctx, tx, msg, recipients)
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return msg, recipients, nil
}

// fanOut pushes msg to online recipients and queues it for everyone else.
func (s *DeliveryService) fanOut(ctx context.Context, msg *models.Message, recipients []uuid.UUID) {
	for _, rid := range recipients {
		if s.presence.IsOnline(ctx, rid) && s.notifier != nil {
			err := s.notifier.DeliverMessage(ctx, rid, msg)
			if err == nil {
				if _, err := s.receipts.Advance(ctx, msg.ID, rid, models.StatusDelivered); err != nil {
					s.log.Warn().Err(err).
						Str("message_id", msg.ID.String()).
						Str("recipient_id", rid.String()).
						Msg("delivered receipt not recorded")
				}
				continue
			}
			s.log.Debug().Err(err).Str("recipient_id", rid.String()).Msg("live delivery failed, queueing")
		}
		s.enqueue(ctx, rid, msg)
	}
}

func (s *DeliveryService) enqueue(ctx context.Context, userID uuid.UUID, msg *models.Message) {
	err := s.outbox.Enqueue(ctx, userID, models.NewMessageRef(msg))
	switch {
	case err == nil:
	case apperrors.CodeOf(err) == apperrors.CodeResourceExhausted:
		// Oldest entries were dropped; the drain reports the gap.
	default:
		s.log.Error().Err(err).
			Str("message_id", msg.ID.String()).
			Str("recipient_id", userID.String()).
			Msg("outbox enqueue failed")
	}
}

// Drain empties the user's outbox and loads the referenced messages. Entries
// whose message no longer exists are skipped. On a store failure the whole
// drained batch goes back to the head of the outbox and nothing is returned.
func (s *DeliveryService) Drain(ctx context.Context, userID uuid.UUID) ([]PendingDelivery, error) {
	refs, err := s.outbox.Drain(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	out := make([]PendingDelivery, 0, len(refs))
	for _, ref := range refs {
		if ref.Kind == models.RefGap {
			out = append(out, PendingDelivery{Ref: ref})
			continue
		}

		var msg *models.Message
		err := s.runner.Run(ctx, "messages.FindByID", func(ctx context.Context) error {
			var err error
			msg, err = s.store.Messages.FindByID(ctx, ref.MessageID)
			return err
		})
		if repository.IsNotFound(err) {
			continue
		}
		if err != nil {
			s.Requeue(context.WithoutCancel(ctx), userID, refs)
			return nil, err
		}
		out = append(out, PendingDelivery{Ref: ref, Message: msg})
	}
	return out, nil
}

// Requeue puts drained refs back at the head of the user's outbox so they
// are delivered before anything queued since, in their original order.
func (s *DeliveryService) Requeue(ctx context.Context, userID uuid.UUID, refs []models.MessageRef) {
	err := s.outbox.Requeue(ctx, userID, refs)
	if err != nil && apperrors.CodeOf(err) != apperrors.CodeResourceExhausted {
		s.log.Error().Err(err).
			Str("user_id", userID.String()).
			Int("refs", len(refs)).
			Msg("requeue failed")
	}
}

// EditMessage replaces the visible text of a message. Only the sender may edit.
func (s *DeliveryService) EditMessage(ctx context.Context, messageID, userID uuid.UUID, content string) (*models.Message, error) {
	if err := validation.ValidateContent(content, s.maxContentLength); err != nil {
		return nil, err
	}
	msg, err := s.ownMessage(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	err = s.runner.Run(ctx, "messages.SetEdited", func(ctx context.Context) error {
		return s.store.Messages.SetEdited(ctx, messageID, content, s.now())
	})
	return s.afterChange(ctx, msg, err)
}

// DeleteMessage hides a message. The stored content is kept.
func (s *DeliveryService) DeleteMessage(ctx context.Context, messageID, userID uuid.UUID) (*models.Message, error) {
	msg, err := s.ownMessage(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	err = s.runner.Run(ctx, "messages.SetDeleted", func(ctx context.Context) error {
		return s.store.Messages.SetDeleted(ctx, messageID, s.now())
	})
	return s.afterChange(ctx, msg, err)
}

func (s *DeliveryService) ownMessage(ctx context.Context, messageID, userID uuid.UUID) (*models.Message, error) {
	var msg *models.Message
	err := s.runner.Run(ctx, "messages.FindByID", func(ctx context.Context) error {
		var err error
		msg, err = s.store.Messages.FindByID(ctx, messageID)
		return err
	})
	if repository.IsNotFound(err) {
		return nil, apperrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	if msg.DeletedAt != nil {
		return nil, apperrors.ErrMessageNotFound
	}
	if msg.SenderID != userID {
		return nil, apperrors.ErrNotMessageOwner
	}
	return msg, nil
}

func (s *DeliveryService) afterChange(ctx context.Context, msg *models.Message, err error) (*models.Message, error) {
	if repository.IsNotFound(err) {
		return nil, apperrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}

	var updated *models.Message
	err = s.runner.Run(ctx, "messages.FindByID", func(ctx context.Context) error {
		var err error
		updated, err = s.store.Messages.FindByID(ctx, msg.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePage(ctx, msg.ChatID)
	if s.notifier != nil {
		participants, err := s.store.Chats.ListParticipants(ctx, msg.ChatID, true)
		if err != nil {
			s.log.Warn().Err(err).Str("chat_id", msg.ChatID.String()).Msg("change notify skipped")
			return updated, nil
		}
		for _, p := range participants {
			if err := s.notifier.MessageUpdated(ctx, p.UserID, updated); err != nil {
				s.log.Debug().Err(err).Str("user_id", p.UserID.String()).Msg("change notify failed")
			}
		}
	}
	return updated, nil
}

func (s *DeliveryService) invalidatePage(ctx context.Context, chatID uuid.UUID) {
	if err := s.pages.Invalidate(ctx, chatID); err != nil {
		s.log.Warn().Err(err).Str("chat_id", chatID.String()).Msg("page cache invalidation failed")
	}
}
