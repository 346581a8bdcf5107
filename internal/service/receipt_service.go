package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/noteduco342/relay-backend/internal/validation"
	"github.com/rs/zerolog"
)

// ReceiptService tracks each recipient's sent, delivered and read progress.
type ReceiptService struct {
	store    *repository.Store
	runner   *StoreRunner
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewReceiptService(store *repository.Store, runner *StoreRunner, notifier Notifier, log zerolog.Logger) *ReceiptService {
	return &ReceiptService{
		store:    store,
		runner:   runner,
		notifier: notifier,
		log:      log.With().Str("component", "receipts").Logger(),
		now:      utcNow,
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// Initialize creates a sent receipt per recipient. Safe to repeat.
func (s *ReceiptService) Initialize(ctx context.Context, msg *models.Message, recipientIDs []uuid.UUID) error {
	return s.initializeWith(ctx, s.store, msg, recipientIDs)
}

func (s *ReceiptService) initializeWith(ctx context.Context, store *repository.Store, msg *models.Message, recipientIDs []uuid.UUID) error {
	now := s.now()
	receipts := make([]models.MessageReceipt, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		if id == msg.SenderID {
			continue
		}
		receipts = append(receipts, models.MessageReceipt{
			MessageID: msg.ID,
			UserID:    id,
			ChatID:    msg.ChatID,
			Seq:       msg.Seq,
			Status:    models.StatusSent,
			Rank:      models.StatusSent.Rank(),
			UpdatedAt: now,
		})
	}
	return store.Receipts.Initialize(ctx, receipts)
}

// Advance moves a receipt forward. Repeating the current status is a no-op;
// moving backwards fails with ErrInvalidTransition.
func (s *ReceiptService) Advance(ctx context.Context, messageID, userID uuid.UUID, status models.ReceiptStatus) (*models.MessageReceipt, error) {
	if err := validation.ValidateReceiptStatus(status); err != nil {
		return nil, err
	}

	var changed bool
	err := s.runner.Run(ctx, "receipts.Advance", func(ctx context.Context) error {
		var err error
		changed, err = s.store.Receipts.Advance(ctx, messageID, userID, status, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	current, err := s.get(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}
	if !changed && current.Rank > status.Rank() {
		return nil, apperrors.ErrInvalidTransition
	}
	if changed {
		s.notifySender(ctx, current)
	}
	return current, nil
}

func (s *ReceiptService) get(ctx context.Context, messageID, userID uuid.UUID) (*models.MessageReceipt, error) {
	var receipt *models.MessageReceipt
	err := s.runner.Run(ctx, "receipts.Get", func(ctx context.Context) error {
		var err error
		receipt, err = s.store.Receipts.Get(ctx, messageID, userID)
		return err
	})
	if repository.IsNotFound(err) {
		return nil, apperrors.ErrReceiptNotFound
	}
	return receipt, err
}

func (s *ReceiptService) notifySender(ctx context.Context, receipt *models.MessageReceipt) {
	if s.notifier == nil {
		return
	}
	msg, err := s.store.Messages.FindByID(ctx, receipt.MessageID)
	if err != nil {
		s.log.Debug().Err(err).Str("message_id", receipt.MessageID.String()).Msg("receipt notify skipped")
		return
	}
	if err := s.notifier.ReceiptUpdated(ctx, msg.SenderID, receipt); err != nil {
		s.log.Debug().Err(err).Str("sender_id", msg.SenderID.String()).Msg("receipt notify failed")
	}
}

// MarkChatRead reads everything in the chat up to upToSeq for userID and
// returns how many receipts moved.
func (s *ReceiptService) MarkChatRead(ctx context.Context, chatID, userID uuid.UUID, upToSeq int64) (int, error) {
	if err := s.requireParticipant(ctx, chatID, userID, false); err != nil {
		return 0, err
	}

	now := s.now()
	var upgraded []repository.ReadUpgrade
	err := s.runner.Run(ctx, "receipts.MarkChatRead", func(ctx context.Context) error {
		var err error
		upgraded, err = s.store.Receipts.MarkChatRead(ctx, chatID, userID, upToSeq, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	if s.notifier != nil {
		for _, u := range upgraded {
			receipt := &models.MessageReceipt{
				MessageID:   u.MessageID,
				UserID:      userID,
				ChatID:      chatID,
				Seq:         u.Seq,
				Status:      models.StatusRead,
				Rank:        models.StatusRead.Rank(),
				ReadAt:      &now,
				DeliveredAt: &now,
				UpdatedAt:   now,
			}
			if err := s.notifier.ReceiptUpdated(ctx, u.SenderID, receipt); err != nil {
				s.log.Debug().Err(err).Str("sender_id", u.SenderID.String()).Msg("receipt notify failed")
			}
		}
	}
	return len(upgraded), nil
}

// ChatReadState is the highest seq userID has read in chatID.
func (s *ReceiptService) ChatReadState(ctx context.Context, chatID, userID uuid.UUID) (int64, error) {
	if err := s.requireParticipant(ctx, chatID, userID, false); err != nil {
		return 0, err
	}
	var seq int64
	err := s.runner.Run(ctx, "receipts.ReadState", func(ctx context.Context) error {
		var err error
		seq, err = s.store.Receipts.ReadState(ctx, chatID, userID)
		return err
	})
	return seq, err
}

func (s *ReceiptService) UnreadCount(ctx context.Context, chatID, userID uuid.UUID) (int64, error) {
	if err := s.requireParticipant(ctx, chatID, userID, false); err != nil {
		return 0, err
	}
	var n int64
	err := s.runner.Run(ctx, "receipts.UnreadCount", func(ctx context.Context) error {
		var err error
		n, err = s.store.Receipts.UnreadCount(ctx, chatID, userID)
		return err
	})
	return n, err
}

// ListForMessage shows the sender where each recipient stands.
func (s *ReceiptService) ListForMessage(ctx context.Context, messageID, requesterID uuid.UUID) ([]models.MessageReceipt, error) {
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
	if msg.SenderID != requesterID {
		return nil, apperrors.ErrNotMessageOwner
	}

	var receipts []models.MessageReceipt
	err = s.runner.Run(ctx, "receipts.ListForMessage", func(ctx context.Context) error {
		var err error
		receipts, err = s.store.Receipts.ListForMessage(ctx, messageID)
		return err
	})
	return receipts, err
}

// requireParticipant checks membership. Former participants pass unless
// activeOnly is set.
func (s *ReceiptService) requireParticipant(ctx context.Context, chatID, userID uuid.UUID, activeOnly bool) error {
	_, err := participant(ctx, s.runner, s.store, chatID, userID, activeOnly)
	return err
}

func participant(ctx context.Context, runner *StoreRunner, store *repository.Store, chatID, userID uuid.UUID, activeOnly bool) (*models.ChatParticipant, error) {
	var p *models.ChatParticipant
	err := runner.Run(ctx, "chats.GetParticipant", func(ctx context.Context) error {
		var err error
		p, err = store.Chats.GetParticipant(ctx, chatID, userID)
		return err
	})
	if repository.IsNotFound(err) {
		return nil, apperrors.ErrNotAParticipant
	}
	if err != nil {
		return nil, err
	}
	if activeOnly && !p.Active() {
		return nil, apperrors.ErrNotAParticipant
	}
	return p, nil
}
