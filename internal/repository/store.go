package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one connection or transaction.
type Store struct {
	db *gorm.DB

	Users    UserRepositoryInterface
	Chats    ChatRepositoryInterface
	Messages MessageRepositoryInterface
	Receipts ReceiptRepositoryInterface
	Contacts ContactRepositoryInterface
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Chats:    NewChatRepository(db),
		Messages: NewMessageRepository(db),
		Receipts: NewReceiptRepository(db),
		Contacts: NewContactRepository(db),
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a Store bound to a single transaction. The
// transaction commits only if fn returns nil.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
