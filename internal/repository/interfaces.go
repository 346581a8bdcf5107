package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ChatRepositoryInterface covers chats, their participants and the per-chat sequence
type ChatRepositoryInterface interface {
	Create(ctx context.Context, chat *models.Chat, participants []models.ChatParticipant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	FindDirect(ctx context.Context, userA, userB uuid.UUID) (*models.Chat, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error)
	NextSequence(ctx context.Context, chatID uuid.UUID) (int64, error)
	TouchLastMessage(ctx context.Context, chatID uuid.UUID, at time.Time) error
	GetParticipant(ctx context.Context, chatID, userID uuid.UUID) (*models.ChatParticipant, error)
	ListParticipants(ctx context.Context, chatID uuid.UUID, activeOnly bool) ([]models.ChatParticipant, error)
	AddParticipant(ctx context.Context, p *models.ChatParticipant) error
	MarkLeft(ctx context.Context, chatID, userID uuid.UUID, at time.Time) error
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	FindByClientID(ctx context.Context, senderID uuid.UUID, clientID string) (*models.Message, error)
	ListBySeq(ctx context.Context, chatID uuid.UUID, beforeSeq int64, limit int) ([]models.Message, error)
	SetEdited(ctx context.Context, id uuid.UUID, content string, at time.Time) error
	SetDeleted(ctx context.Context, id uuid.UUID, at time.Time) error
	AddMedia(ctx context.Context, media *models.Media) error
}

// ReceiptRepositoryInterface defines the contract for per-recipient receipt rows
type ReceiptRepositoryInterface interface {
	Initialize(ctx context.Context, receipts []models.MessageReceipt) error
	Get(ctx context.Context, messageID, userID uuid.UUID) (*models.MessageReceipt, error)
	ListForMessage(ctx context.Context, messageID uuid.UUID) ([]models.MessageReceipt, error)
	Advance(ctx context.Context, messageID, userID uuid.UUID, status models.ReceiptStatus, at time.Time) (bool, error)
	MarkChatRead(ctx context.Context, chatID, userID uuid.UUID, upToSeq int64, at time.Time) ([]ReadUpgrade, error)
	ReadState(ctx context.Context, chatID, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, chatID, userID uuid.UUID) (int64, error)
}

// ContactRepositoryInterface defines the contract for a user's address book
type ContactRepositoryInterface interface {
	Create(ctx context.Context, contact *models.Contact) error
	Get(ctx context.Context, ownerID, contactUserID uuid.UUID) (*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error)
}

var (
	_ UserRepositoryInterface    = (*UserRepository)(nil)
	_ ChatRepositoryInterface    = (*ChatRepository)(nil)
	_ MessageRepositoryInterface = (*MessageRepository)(nil)
	_ ReceiptRepositoryInterface = (*ReceiptRepository)(nil)
	_ ContactRepositoryInterface = (*ContactRepository)(nil)
)
