package models

import (
	"time"

	"github.com/google/uuid"
)

type ReceiptStatus string

const (
	StatusSent      ReceiptStatus = "sent"
	StatusDelivered ReceiptStatus = "delivered"
	StatusRead      ReceiptStatus = "read"
)

// Rank orders statuses along sent < delivered < read. Unknown statuses rank -1.
func (s ReceiptStatus) Rank() int {
	switch s {
	case StatusSent:
		return 0
	case StatusDelivered:
		return 1
	case StatusRead:
		return 2
	}
	return -1
}

func (s ReceiptStatus) Valid() bool {
	return s.Rank() >= 0
}

// MessageReceipt is one recipient's progress on one message. ChatID and Seq
// are copied from the message so read state can be computed without a join.
type MessageReceipt struct {
	MessageID   uuid.UUID     `gorm:"type:uuid;primaryKey" json:"message_id"`
	UserID      uuid.UUID     `gorm:"type:uuid;primaryKey;index:idx_receipt_chat_user,priority:2" json:"user_id"`
	ChatID      uuid.UUID     `gorm:"type:uuid;not null;index:idx_receipt_chat_user,priority:1" json:"chat_id"`
	Seq         int64         `gorm:"not null" json:"seq"`
	Status      ReceiptStatus `gorm:"type:varchar(10);not null;default:'sent'" json:"status"`
	Rank        int           `gorm:"not null;default:0" json:"-"`
	DeliveredAt *time.Time    `json:"delivered_at,omitempty"`
	ReadAt      *time.Time    `json:"read_at,omitempty"`
	UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
