package service

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/repository"
)

const orderingStripes = 256

// OrderingAuthority serializes sends per chat on this instance and hands out
// sequence numbers. Across instances the chat row lock and the unique
// (chat_id, seq) index carry the guarantee.
type OrderingAuthority struct {
	stripes [orderingStripes]sync.Mutex
}

func NewOrderingAuthority() *OrderingAuthority {
	return &OrderingAuthority{}
}

func (o *OrderingAuthority) stripe(chatID uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(chatID[:])
	return &o.stripes[h.Sum32()%orderingStripes]
}

// Lock holds the chat's stripe until the returned func is called.
func (o *OrderingAuthority) Lock(chatID uuid.UUID) func() {
	mu := o.stripe(chatID)
	mu.Lock()
	return mu.Unlock
}

// NextSequence allocates the next seq for chatID. tx must be the transaction
// that will insert the message.
func (o *OrderingAuthority) NextSequence(ctx context.Context, tx *repository.Store, chatID uuid.UUID) (int64, error) {
	return tx.Chats.NextSequence(ctx, chatID)
}
