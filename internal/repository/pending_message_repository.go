package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	pendingKindMessage = string(models.RefMessage)
	pendingKindGap     = string(models.RefGap)
)

// PendingMessageRepository is the durable outbox: one row per queued message
// reference plus at most one gap row per user counting dropped entries.
type PendingMessageRepository struct {
	db     *gorm.DB
	maxLen int
	log    zerolog.Logger
}

func NewPendingMessageRepository(db *gorm.DB, maxLen int, log zerolog.Logger) *PendingMessageRepository {
	if maxLen <= 0 {
		maxLen = 1000
	}
	return &PendingMessageRepository{
		db:     db,
		maxLen: maxLen,
		log:    log.With().Str("component", "outbox").Str("backend", "postgres").Logger(),
	}
}

// Enqueue adds ref to the user's queue, trimming the oldest entries past the
// bound. Trimming reports ErrQueueOverflow after the new entry is committed.
func (r *PendingMessageRepository) Enqueue(ctx context.Context, userID uuid.UUID, ref models.MessageRef) error {
	payload, err := ref.Encode()
	if err != nil {
		return errors.Wrap(err, "outbox.Enqueue: encode")
	}

	var dropped int64
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending := &models.PendingMessage{
			UserID:  userID,
			Kind:    pendingKindMessage,
			Payload: payload,
		}
		if ref.MessageID != uuid.Nil {
			id := ref.MessageID
			pending.MessageID = &id
		}
		if err := tx.Omit(clause.Associations).Create(pending).Error; err != nil {
			return err
		}

		n, err := r.trim(tx, userID)
		dropped = n
		return err
	})
	if err != nil {
		return errors.Wrap(err, "outbox.Enqueue")
	}

	if dropped > 0 {
		r.log.Warn().
			Str("user_id", userID.String()).
			Int64("dropped", dropped).
			Msg("outbox full, dropped oldest entries")
		return apperrors.ErrQueueOverflow
	}
	return nil
}

// trim drops the oldest message rows past the bound and records them in the
// gap row.
func (r *PendingMessageRepository) trim(tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	if err := tx.Model(&models.PendingMessage{}).
		Where("user_id = ? AND kind = ?", userID, pendingKindMessage).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if count <= int64(r.maxLen) {
		return 0, nil
	}

	dropped := count - int64(r.maxLen)
	var oldest []uint
	if err := tx.Model(&models.PendingMessage{}).
		Where("user_id = ? AND kind = ?", userID, pendingKindMessage).
		Order("generation ASC, id ASC").
		Limit(int(dropped)).
		Pluck("id", &oldest).Error; err != nil {
		return 0, err
	}
	if err := tx.Delete(&models.PendingMessage{}, oldest).Error; err != nil {
		return 0, err
	}
	return dropped, r.addGap(tx, userID, dropped)
}

func (r *PendingMessageRepository) addGap(tx *gorm.DB, userID uuid.UUID, dropped int64) error {
	res := tx.Model(&models.PendingMessage{}).
		Where("user_id = ? AND kind = ?", userID, pendingKindGap).
		Update("dropped", gorm.Expr("dropped + ?", dropped))
	if res.Error != nil || res.RowsAffected > 0 {
		return res.Error
	}
	return tx.Create(&models.PendingMessage{
		UserID:  userID,
		Kind:    pendingKindGap,
		Dropped: dropped,
	}).Error
}

// Drain removes and returns everything queued for the user, gap first.
func (r *PendingMessageRepository) Drain(ctx context.Context, userID uuid.UUID) ([]models.MessageRef, error) {
	var rows []models.PendingMessage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			Order("generation ASC, id ASC").
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		ids := make([]uint, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
		}
		return tx.Delete(&models.PendingMessage{}, ids).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "outbox.Drain")
	}

	refs := make([]models.MessageRef, 0, len(rows))
	var gap int64
	for _, row := range rows {
		if row.Kind == pendingKindGap {
			gap += row.Dropped
		}
	}
	if gap > 0 {
		refs = append(refs, models.NewGapRef(gap))
	}
	for _, row := range rows {
		if row.Kind != pendingKindMessage {
			continue
		}
		ref, err := models.DecodeMessageRef(row.Payload)
		if err != nil {
			r.log.Error().Err(err).Uint("row_id", row.ID).Msg("discarding undecodable outbox entry")
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Requeue puts drained refs back ahead of everything currently queued, in
// their original order. Gap refs are merged into the gap row.
func (r *PendingMessageRepository) Requeue(ctx context.Context, userID uuid.UUID, refs []models.MessageRef) error {
	if len(refs) == 0 {
		return nil
	}

	var dropped int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var head int64
		if err := tx.Model(&models.PendingMessage{}).
			Where("user_id = ? AND kind = ?", userID, pendingKindMessage).
			Select("COALESCE(MIN(generation), 0)").
			Scan(&head).Error; err != nil {
			return err
		}

		var gap int64
		rows := make([]models.PendingMessage, 0, len(refs))
		for _, ref := range refs {
			if ref.Kind == models.RefGap {
				gap += ref.Dropped
				continue
			}
			payload, err := ref.Encode()
			if err != nil {
				return errors.Wrap(err, "encode")
			}
			row := models.PendingMessage{
				UserID:     userID,
				Kind:       pendingKindMessage,
				Generation: head - 1,
				Payload:    payload,
			}
			if ref.MessageID != uuid.Nil {
				id := ref.MessageID
				row.MessageID = &id
			}
			rows = append(rows, row)
		}
		if gap > 0 {
			if err := r.addGap(tx, userID, gap); err != nil {
				return err
			}
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return err
		}
		n, err := r.trim(tx, userID)
		dropped = n
		return err
	})
	if err != nil {
		return errors.Wrap(err, "outbox.Requeue")
	}

	if dropped > 0 {
		r.log.Warn().
			Str("user_id", userID.String()).
			Int64("dropped", dropped).
			Msg("outbox full on requeue, dropped oldest entries")
		return apperrors.ErrQueueOverflow
	}
	return nil
}

// Len returns the number of queued message references for a user
func (r *PendingMessageRepository) Len(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PendingMessage{}).
		Where("user_id = ? AND kind = ?", userID, pendingKindMessage).
		Count(&count).Error
	return count, errors.Wrap(err, "outbox.Len")
}
