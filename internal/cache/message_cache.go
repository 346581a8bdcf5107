package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	LatestPageTTL = 5 * time.Minute

	pageVersion = 1
)

// cachedPage is the stored form of a history page. Only the columns a reader
// sees are kept; associations other than media are dropped.
type cachedPage struct {
	Version  int              `msgpack:"v"`
	Messages []models.Message `msgpack:"messages"`
}

// MessageCache holds the newest page of each chat's history. Every send,
// edit, delete or attachment in the chat invalidates it.
type MessageCache struct {
	store EphemeralStore
}

func NewMessageCache(store EphemeralStore) *MessageCache {
	return &MessageCache{store: store}
}

func latestPageKey(chatID uuid.UUID) string {
	return fmt.Sprintf("history:%s:latest", chatID)
}

// GetLatest returns the cached newest page. Entries written by another
// format version, or that fail to decode, count as a miss and are evicted.
func (mc *MessageCache) GetLatest(ctx context.Context, chatID uuid.UUID) ([]models.Message, bool) {
	if mc == nil || mc.store == nil {
		return nil, false
	}
	key := latestPageKey(chatID)
	data, err := mc.store.Get(ctx, key)
	if err != nil || data == nil {
		return nil, false
	}

	var page cachedPage
	if err := msgpack.Unmarshal(data, &page); err != nil || page.Version != pageVersion {
		_ = mc.store.Delete(ctx, key)
		return nil, false
	}
	return page.Messages, true
}

func (mc *MessageCache) SetLatest(ctx context.Context, chatID uuid.UUID, messages []models.Message) error {
	if mc == nil || mc.store == nil {
		return nil
	}
	page := cachedPage{Version: pageVersion, Messages: make([]models.Message, len(messages))}
	for i, m := range messages {
		m.Sender = models.User{}
		m.Parent = nil
		m.Receipts = nil
		page.Messages[i] = m
	}
	data, err := msgpack.Marshal(&page)
	if err != nil {
		return err
	}
	return mc.store.Set(ctx, latestPageKey(chatID), data, LatestPageTTL)
}

func (mc *MessageCache) Invalidate(ctx context.Context, chatID uuid.UUID) error {
	if mc == nil || mc.store == nil {
		return nil
	}
	return mc.store.Delete(ctx, latestPageKey(chatID))
}
