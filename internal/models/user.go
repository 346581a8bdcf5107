package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PublicKey string    `gorm:"type:text;not null" json:"public_key"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	PublicKey string    `json:"public_key"`
	IsOnline  bool      `json:"is_online"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse(online bool) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		PublicKey: u.PublicKey,
		IsOnline:  online,
		CreatedAt: u.CreatedAt,
	}
}
