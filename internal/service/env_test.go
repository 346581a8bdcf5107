package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/cache"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/noteduco342/relay-backend/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// testEnv wires the services against a temp SQLite database and miniredis.
type testEnv struct {
	t        *testing.T
	h        *testutil.TestHelper
	store    *repository.Store
	runner   *StoreRunner
	mr       *miniredis.Miniredis
	presence *cache.PresenceStore
	outbox   *cache.RedisOutbox
	pages    *cache.MessageCache
	receipts *ReceiptService
	delivery *DeliveryService
	chats    *ChatService
}

func newTestEnv(t *testing.T, notifier Notifier, outboxMax int) *testEnv {
	t.Helper()
	if outboxMax <= 0 {
		outboxMax = cache.DefaultOutboxMaxLen
	}

	h := testutil.NewTestHelper(t)
	mr := miniredis.RunT(t)
	rc := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rc.Close() })

	log := zerolog.Nop()
	store := repository.NewStore(h.DB)
	runner := NewStoreRunner(2*time.Second, 1, log)
	presence := cache.NewPresenceStore(rc, log, cache.DefaultPresenceTTL, cache.DefaultTypingTTL)
	outbox := cache.NewRedisOutbox(rc, outboxMax, log)
	pages := cache.NewMessageCache(rc)
	receipts := NewReceiptService(store, runner, notifier, log)

	return &testEnv{
		t:        t,
		h:        h,
		store:    store,
		runner:   runner,
		mr:       mr,
		presence: presence,
		outbox:   outbox,
		pages:    pages,
		receipts: receipts,
		delivery: NewDeliveryService(DeliveryDeps{
			Store:    store,
			Runner:   runner,
			Receipts: receipts,
			Presence: presence,
			Notifier: notifier,
			Outbox:   outbox,
			Pages:    pages,
			Log:      log,
		}),
		chats: NewChatService(store, runner, pages, log),
	}
}

func (e *testEnv) send(chat *models.Chat, sender *models.User, content string) *models.Message {
	e.t.Helper()
	msg, err := e.delivery.SendMessage(context.Background(), SendMessageInput{
		ChatID:   chat.ID,
		SenderID: sender.ID,
		Content:  content,
	})
	if err != nil {
		e.t.Fatalf("send %q: %v", content, err)
	}
	return msg
}

func (e *testEnv) receipt(messageID, userID uuid.UUID) *models.MessageReceipt {
	e.t.Helper()
	r, err := e.store.Receipts.Get(context.Background(), messageID, userID)
	if err != nil {
		e.t.Fatalf("get receipt: %v", err)
	}
	return r
}

func (e *testEnv) outboxLen(userID uuid.UUID) int64 {
	e.t.Helper()
	n, err := e.outbox.Len(context.Background(), userID)
	if err != nil {
		e.t.Fatalf("outbox len: %v", err)
	}
	return n
}
