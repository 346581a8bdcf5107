package models

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	TextMessage  MessageType = "text"
	ImageMessage MessageType = "image"
	VideoMessage MessageType = "video"
	AudioMessage MessageType = "audio"
	FileMessage  MessageType = "file"
)

func (t MessageType) Valid() bool {
	switch t {
	case TextMessage, ImageMessage, VideoMessage, AudioMessage, FileMessage:
		return true
	}
	return false
}

// Message is ordered inside its chat by Seq. Content is never overwritten:
// edits land in EditedContent and deletes only set DeletedAt.
type Message struct {
	ID       uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID   uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_chat_seq,priority:1;index:idx_chat_created,priority:1" json:"chat_id"`
	Seq      int64       `gorm:"not null;uniqueIndex:idx_chat_seq,priority:2" json:"seq"`
	SenderID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_sender_client,priority:1" json:"sender_id"`
	ClientID *string     `gorm:"size:64;uniqueIndex:idx_sender_client,priority:2" json:"client_id,omitempty"`
	Type     MessageType `gorm:"type:varchar(10);not null;default:'text'" json:"type"`
	Content  string      `gorm:"type:text;not null" json:"-"`

	EditedContent *string    `gorm:"type:text" json:"-"`
	ReplyTo       *uuid.UUID `gorm:"type:uuid;index" json:"reply_to,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;index:idx_chat_created,priority:2" json:"created_at"`
	EditedAt      *time.Time `json:"edited_at,omitempty"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`

	Sender   User             `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Parent   *Message         `gorm:"foreignKey:ReplyTo;constraint:OnDelete:SET NULL" json:"-"`
	Media    []Media          `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
	Receipts []MessageReceipt `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

// Body returns the text a reader should see.
func (m *Message) Body() string {
	if m.DeletedAt != nil {
		return ""
	}
	if m.EditedContent != nil {
		return *m.EditedContent
	}
	return m.Content
}

type Media struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;index" json:"message_id"`
	ObjectKey string    `gorm:"type:text;not null" json:"-"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	MimeType  string    `gorm:"size:100;not null" json:"mime_type"`
	Size      int64     `gorm:"not null" json:"size"`
	Width     *int      `json:"width,omitempty"`
	Height    *int      `json:"height,omitempty"`
}

type MessageResponse struct {
	ID        uuid.UUID   `json:"id"`
	ChatID    uuid.UUID   `json:"chat_id"`
	Seq       int64       `json:"seq"`
	SenderID  uuid.UUID   `json:"sender_id"`
	ClientID  *string     `json:"client_id,omitempty"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	ReplyTo   *uuid.UUID  `json:"reply_to,omitempty"`
	Media     []Media     `json:"media,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	EditedAt  *time.Time  `json:"edited_at,omitempty"`
	DeletedAt *time.Time  `json:"deleted_at,omitempty"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Seq:       m.Seq,
		SenderID:  m.SenderID,
		ClientID:  m.ClientID,
		Type:      m.Type,
		Content:   m.Body(),
		ReplyTo:   m.ReplyTo,
		Media:     m.Media,
		CreatedAt: m.CreatedAt,
		EditedAt:  m.EditedAt,
		DeletedAt: m.DeletedAt,
	}
}
