package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

type ChatType string

const (
	ChatDirect ChatType = "direct"
	ChatGroup  ChatType = "group"
)

func (t ChatType) Valid() bool {
	return t == ChatDirect || t == ChatGroup
}

type ParticipantRole string

const (
	RoleAdmin  ParticipantRole = "admin"
	RoleMember ParticipantRole = "member"
)

// Chat owns its participants and messages. LastSeq is the per-chat ordering
// counter handed out to messages; LastMessageAt only ever moves forward.
type Chat struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Type          ChatType   `gorm:"type:varchar(10);not null;default:'direct'" json:"type"`
	Title         string     `gorm:"size:100" json:"title,omitempty"`
	// Set only on direct chats; one chat per member pair.
	DirectKey *string `gorm:"size:80;uniqueIndex" json:"-"`
	LastSeq       int64      `gorm:"not null;default:0" json:"last_seq"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	LastMessageAt *time.Time `gorm:"index" json:"last_message_at"`

	Participants []ChatParticipant `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"-"`
	Messages     []Message         `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"-"`
}

// DirectPairKey identifies the direct chat between a and b in either order.
func DirectPairKey(a, b uuid.UUID) string {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return a.String() + ":" + b.String()
}

type ChatParticipant struct {
	ChatID   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"chat_id"`
	UserID   uuid.UUID       `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	Role     ParticipantRole `gorm:"type:varchar(10);not null;default:'member'" json:"role"`
	JoinedAt time.Time       `gorm:"not null" json:"joined_at"`
	LeftAt   *time.Time      `json:"left_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Active reports whether the participant is still part of the chat.
func (p *ChatParticipant) Active() bool {
	return p.LeftAt == nil
}

type ChatResponse struct {
	ID            uuid.UUID         `json:"id"`
	Type          ChatType          `json:"type"`
	Title         string            `json:"title,omitempty"`
	LastSeq       int64             `json:"last_seq"`
	CreatedAt     time.Time         `json:"created_at"`
	LastMessageAt *time.Time        `json:"last_message_at"`
	Participants  []ChatParticipant `json:"participants,omitempty"`
}

func (c *Chat) ToResponse(participants []ChatParticipant) ChatResponse {
	return ChatResponse{
		ID:            c.ID,
		Type:          c.Type,
		Title:         c.Title,
		LastSeq:       c.LastSeq,
		CreatedAt:     c.CreatedAt,
		LastMessageAt: c.LastMessageAt,
		Participants:  participants,
	}
}
