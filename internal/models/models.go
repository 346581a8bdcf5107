package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Chat{},
		&ChatParticipant{},
		&Message{},
		&Media{},
		&MessageReceipt{},
		&Contact{},
		&PendingMessage{},
	}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

func (c *Chat) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

func (m *Media) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
