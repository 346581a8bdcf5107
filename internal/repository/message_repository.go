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

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(message).Error
	return errors.Wrap(err, "messages.Create")
}

func (r *MessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Preload("Media").First(&message, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "messages.FindByID")
	}
	return &message, nil
}

func (r *MessageRepository) FindByClientID(ctx context.Context, senderID uuid.UUID, clientID string) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND client_id = ?", senderID, clientID).
		First(&message).Error
	if err != nil {
		return nil, errors.Wrap(err, "messages.FindByClientID")
	}
	return &message, nil
}

// ListBySeq returns up to limit messages older than beforeSeq (all when
// beforeSeq is 0), oldest first.
func (r *MessageRepository) ListBySeq(ctx context.Context, chatID uuid.UUID, beforeSeq int64, limit int) ([]models.Message, error) {
	var messages []models.Message
	q := r.db.WithContext(ctx).Preload("Media").Where("chat_id = ?", chatID)
	if beforeSeq > 0 {
		q = q.Where("seq < ?", beforeSeq)
	}
	err := q.Order("seq DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "messages.ListBySeq")
	}

	// Reverse to get chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) SetEdited(ctx context.Context, id uuid.UUID, content string, at time.Time) error {
	return r.update(ctx, "messages.SetEdited", id, map[string]interface{}{
		"edited_content": content,
		"edited_at":      at,
	})
}

func (r *MessageRepository) SetDeleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.update(ctx, "messages.SetDeleted", id, map[string]interface{}{
		"deleted_at": at,
	})
}

func (r *MessageRepository) update(ctx context.Context, op string, id uuid.UUID, values map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(values)
	if res.Error != nil {
		return errors.Wrap(res.Error, op)
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(gorm.ErrRecordNotFound, op)
	}
	return nil
}

func (r *MessageRepository) AddMedia(ctx context.Context, media *models.Media) error {
	if media.ID == uuid.Nil {
		media.ID = uuid.New()
	}
	return errors.Wrap(r.db.WithContext(ctx).Create(media).Error, "messages.AddMedia")
}
