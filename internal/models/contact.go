package models

import "github.com/google/uuid"

type Contact struct {
	OwnerID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"owner_id"`
	ContactUserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"contact_user_id"`
	Alias         *string   `gorm:"size:100" json:"alias,omitempty"`
	Blocked       bool      `gorm:"not null;default:false" json:"blocked"`

	Owner   User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Contact User `gorm:"foreignKey:ContactUserID;constraint:OnDelete:CASCADE" json:"-"`
}
