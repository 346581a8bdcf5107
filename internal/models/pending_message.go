package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingMessage is a row in the durable per-user outbox. Payload holds the
// encoded message reference so draining never needs a join.
type PendingMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Target user who should receive this message
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_pending_user" json:"user_id"`

	// Null for gap markers
	MessageID *uuid.UUID `gorm:"type:uuid;index" json:"message_id"`
	Message   *Message   `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`

	// Requeued rows take a lower generation than anything still queued so
	// they drain first. Rows are ordered by (generation, id).
	Generation int64 `gorm:"not null;default:0" json:"generation"`

	Kind    string `gorm:"size:10;not null;default:'message'" json:"kind"`
	Dropped int64  `gorm:"not null;default:0" json:"dropped"`
	Payload []byte `json:"-"`
}
