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

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create inserts the chat and its initial participants together.
func (r *ChatRepository) Create(ctx context.Context, chat *models.Chat, participants []models.ChatParticipant) error {
	if chat.ID == uuid.Nil {
		chat.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(chat).Error; err != nil {
			return err
		}
		for i := range participants {
			participants[i].ChatID = chat.ID
		}
		if len(participants) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(&participants).Error
	})
	return errors.Wrap(err, "chats.Create")
}

func (r *ChatRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).First(&chat, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "chats.FindByID")
	}
	return &chat, nil
}

// FindDirect returns the direct chat both users belong to.
func (r *ChatRepository) FindDirect(ctx context.Context, userA, userB uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_participants pa ON pa.chat_id = chats.id AND pa.user_id = ?", userA).
		Joins("JOIN chat_participants pb ON pb.chat_id = chats.id AND pb.user_id = ?", userB).
		Where("chats.type = ?", models.ChatDirect).
		First(&chat).Error
	if err != nil {
		return nil, errors.Wrap(err, "chats.FindDirect")
	}
	return &chat, nil
}

// ListForUser returns the user's active chats, most recently active first.
func (r *ChatRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_participants ON chat_participants.chat_id = chats.id").
		Where("chat_participants.user_id = ? AND chat_participants.left_at IS NULL", userID).
		Order("COALESCE(chats.last_message_at, chats.created_at) DESC").
		Order("chats.id").
		Find(&chats).Error
	return chats, errors.Wrap(err, "chats.ListForUser")
}

// NextSequence hands out the chat's next message sequence number. It must run
// inside the transaction that inserts the message: the chat row stays locked
// until that transaction ends, so concurrent senders queue here.
func (r *ChatRepository) NextSequence(ctx context.Context, chatID uuid.UUID) (int64, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "last_seq").
		First(&chat, "id = ?", chatID).Error
	if err != nil {
		return 0, errors.Wrap(err, "chats.NextSequence")
	}

	next := chat.LastSeq + 1
	res := r.db.WithContext(ctx).Model(&models.Chat{}).
		Where("id = ? AND last_seq = ?", chatID, chat.LastSeq).
		Update("last_seq", next)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "chats.NextSequence")
	}
	if res.RowsAffected != 1 {
		return 0, errors.Errorf("chats.NextSequence: sequence for chat %s moved underneath us", chatID)
	}
	return next, nil
}

// TouchLastMessage moves last_message_at forward, never back.
func (r *ChatRepository) TouchLastMessage(ctx context.Context, chatID uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Chat{}).
		Where("id = ? AND (last_message_at IS NULL OR last_message_at < ?)", chatID, at).
		Update("last_message_at", at).Error
	return errors.Wrap(err, "chats.TouchLastMessage")
}

func (r *ChatRepository) GetParticipant(ctx context.Context, chatID, userID uuid.UUID) (*models.ChatParticipant, error) {
	var p models.ChatParticipant
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		First(&p).Error
	if err != nil {
		return nil, errors.Wrap(err, "chats.GetParticipant")
	}
	return &p, nil
}

func (r *ChatRepository) ListParticipants(ctx context.Context, chatID uuid.UUID, activeOnly bool) ([]models.ChatParticipant, error) {
	var participants []models.ChatParticipant
	q := r.db.WithContext(ctx).Where("chat_id = ?", chatID)
	if activeOnly {
		q = q.Where("left_at IS NULL")
	}
	err := q.Order("joined_at, user_id").Find(&participants).Error
	return participants, errors.Wrap(err, "chats.ListParticipants")
}

// AddParticipant inserts p, or brings a former participant back.
func (r *ChatRepository) AddParticipant(ctx context.Context, p *models.ChatParticipant) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "chat_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"left_at":   nil,
				"joined_at": p.JoinedAt,
			}),
		}).
		Create(p).Error
	return errors.Wrap(err, "chats.AddParticipant")
}

func (r *ChatRepository) MarkLeft(ctx context.Context, chatID, userID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ? AND left_at IS NULL", chatID, userID).
		Update("left_at", at)
	if res.Error != nil {
		return errors.Wrap(res.Error, "chats.MarkLeft")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(gorm.ErrRecordNotFound, "chats.MarkLeft")
	}
	return nil
}
