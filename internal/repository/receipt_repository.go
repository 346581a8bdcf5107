package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReadUpgrade is one receipt moved to read by MarkChatRead.
type ReadUpgrade struct {
	MessageID uuid.UUID
	SenderID  uuid.UUID
	Seq       int64
}

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Initialize inserts receipts, leaving any row that already exists untouched.
func (r *ReceiptRepository) Initialize(ctx context.Context, receipts []models.MessageReceipt) error {
	if len(receipts) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&receipts).Error
	return errors.Wrap(err, "receipts.Initialize")
}

func (r *ReceiptRepository) Get(ctx context.Context, messageID, userID uuid.UUID) (*models.MessageReceipt, error) {
	var receipt models.MessageReceipt
	err := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		First(&receipt).Error
	if err != nil {
		return nil, errors.Wrap(err, "receipts.Get")
	}
	return &receipt, nil
}

func (r *ReceiptRepository) ListForMessage(ctx context.Context, messageID uuid.UUID) ([]models.MessageReceipt, error) {
	var receipts []models.MessageReceipt
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("user_id").
		Find(&receipts).Error
	return receipts, errors.Wrap(err, "receipts.ListForMessage")
}

// upgradeValues builds the column set for moving a receipt to status. Going
// straight to read fills delivered_at as well.
func upgradeValues(status models.ReceiptStatus, at time.Time) map[string]interface{} {
	values := map[string]interface{}{
		"status":     status,
		"rank":       status.Rank(),
		"updated_at": at,
	}
	switch status {
	case models.StatusDelivered:
		values["delivered_at"] = gorm.Expr("COALESCE(delivered_at, ?)", at)
	case models.StatusRead:
		values["delivered_at"] = gorm.Expr("COALESCE(delivered_at, ?)", at)
		values["read_at"] = at
	}
	return values
}

// Advance moves the receipt forward to status in a single conditional update.
// It reports false when the row was missing or already at or past status.
func (r *ReceiptRepository) Advance(ctx context.Context, messageID, userID uuid.UUID, status models.ReceiptStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.MessageReceipt{}).
		Where("message_id = ? AND user_id = ? AND rank < ?", messageID, userID, status.Rank()).
		Updates(upgradeValues(status, at))
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "receipts.Advance")
	}
	return res.RowsAffected > 0, nil
}

// MarkChatRead moves every receipt of userID in chatID up to and including
// upToSeq to read, returning the rows it changed.
func (r *ReceiptRepository) MarkChatRead(ctx context.Context, chatID, userID uuid.UUID, upToSeq int64, at time.Time) ([]ReadUpgrade, error) {
	readRank := models.StatusRead.Rank()
	var upgraded []ReadUpgrade

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Table("message_receipts").
			Select("message_receipts.message_id, messages.sender_id, message_receipts.seq").
			Joins("JOIN messages ON messages.id = message_receipts.message_id").
			Where("message_receipts.chat_id = ? AND message_receipts.user_id = ?", chatID, userID).
			Where("message_receipts.seq <= ? AND message_receipts.rank < ?", upToSeq, readRank).
			Order("message_receipts.seq").
			Scan(&upgraded).Error
		if err != nil || len(upgraded) == 0 {
			return err
		}

		ids := make([]uuid.UUID, len(upgraded))
		for i, u := range upgraded {
			ids[i] = u.MessageID
		}
		return tx.Model(&models.MessageReceipt{}).
			Where("user_id = ? AND message_id IN ? AND rank < ?", userID, ids, readRank).
			Updates(upgradeValues(models.StatusRead, at)).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "receipts.MarkChatRead")
	}
	return upgraded, nil
}

// ReadState is the highest seq the user has read in the chat, 0 if none.
func (r *ReceiptRepository) ReadState(ctx context.Context, chatID, userID uuid.UUID) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).Model(&models.MessageReceipt{}).
		Select("COALESCE(MAX(seq), 0)").
		Where("chat_id = ? AND user_id = ? AND rank = ?", chatID, userID, models.StatusRead.Rank()).
		Scan(&seq).Error
	return seq, errors.Wrap(err, "receipts.ReadState")
}

func (r *ReceiptRepository) UnreadCount(ctx context.Context, chatID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MessageReceipt{}).
		Where("chat_id = ? AND user_id = ? AND rank < ?", chatID, userID, models.StatusRead.Rank()).
		Count(&count).Error
	return count, errors.Wrap(err, "receipts.UnreadCount")
}
