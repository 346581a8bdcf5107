package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/cache"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/notify"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/noteduco342/relay-backend/internal/service"
	"github.com/noteduco342/relay-backend/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flushEnv struct {
	t        *testing.T
	h        *testutil.TestHelper
	store    *repository.Store
	outbox   *cache.RedisOutbox
	receipts *service.ReceiptService
	delivery *service.DeliveryService
}

func newFlushEnv(t *testing.T, outboxMax int) *flushEnv {
	t.Helper()
	h := testutil.NewTestHelper(t)
	mr := miniredis.RunT(t)
	rc := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rc.Close() })

	log := zerolog.Nop()
	hub := newTestHub()
	store := repository.NewStore(h.DB)
	runner := service.NewStoreRunner(2*time.Second, 1, log)
	receipts := service.NewReceiptService(store, runner, hub, log)
	outbox := cache.NewRedisOutbox(rc, outboxMax, log)

	return &flushEnv{
		t:        t,
		h:        h,
		store:    store,
		outbox:   outbox,
		receipts: receipts,
		delivery: service.NewDeliveryService(service.DeliveryDeps{
			Store:    store,
			Runner:   runner,
			Receipts: receipts,
			Presence: cache.NewPresenceStore(rc, log, cache.DefaultPresenceTTL, cache.DefaultTypingTTL),
			Notifier: hub,
			Outbox:   outbox,
			Log:      log,
		}),
	}
}

func (e *flushEnv) sendN(chat *models.Chat, sender *models.User, n int) []*models.Message {
	e.t.Helper()
	out := make([]*models.Message, 0, n)
	for i := 0; i < n; i++ {
		msg, err := e.delivery.SendMessage(context.Background(), service.SendMessageInput{
			ChatID:   chat.ID,
			SenderID: sender.ID,
			Content:  fmt.Sprintf("m%d", i),
		})
		require.NoError(e.t, err)
		out = append(out, msg)
	}
	return out
}

func (e *flushEnv) msgContext(user *models.User, conn Conn) *MessageContext {
	return &MessageContext{
		Ctx:      context.Background(),
		UserID:   user.ID,
		Client:   &ClientConnection{Conn: conn, UserID: user.ID},
		Delivery: e.delivery,
		Receipts: e.receipts,
		Log:      zerolog.Nop(),
	}
}

func (e *flushEnv) assertAllSent(msgs []*models.Message, userID uuid.UUID) {
	e.t.Helper()
	for _, m := range msgs {
		r, err := e.store.Receipts.Get(context.Background(), m.ID, userID)
		require.NoError(e.t, err)
		assert.Equal(e.t, models.StatusSent, r.Status, "message seq %d", m.Seq)
	}
}

type batchFrame struct {
	Type     string `json:"type"`
	Count    int    `json:"count"`
	Messages []struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	} `json:"messages"`
}

func decodeBatch(t *testing.T, f frame) batchFrame {
	t.Helper()
	var b batchFrame
	require.NoError(t, json.Unmarshal(f.data, &b))
	require.Equal(t, notify.EventBatch, b.Type)
	return b
}

func batchMessageIDs(t *testing.T, b batchFrame) []uuid.UUID {
	t.Helper()
	var ids []uuid.UUID
	for _, evt := range b.Messages {
		if evt.Type != notify.EventMessage {
			continue
		}
		var m models.MessageResponse
		require.NoError(t, json.Unmarshal(evt.Payload, &m))
		ids = append(ids, m.ID)
	}
	return ids
}

func idsOf(msgs []*models.Message) []uuid.UUID {
	ids := make([]uuid.UUID, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return ids
}

func TestFlushOutbox_WriteFailureRequeuesUnsentInOrder(t *testing.T) {
	env := newFlushEnv(t, 0)
	alice := env.h.CreateUser("alice")
	bob := env.h.CreateUser("bob")
	chat := env.h.CreateChat(models.ChatDirect, alice, bob)

	msgs := env.sendN(chat, alice, flushBatchSize+10)

	conn := &fakeConn{writeErr: errors.New("broken pipe"), failOnWrite: 2}
	sent, err := FlushOutbox(env.msgContext(bob, conn))
	require.Error(t, err)
	assert.Equal(t, flushBatchSize, sent)

	frames := conn.received()
	require.Len(t, frames, 1)
	first := decodeBatch(t, frames[0])
	assert.Equal(t, flushBatchSize, first.Count)
	assert.Equal(t, idsOf(msgs[:flushBatchSize]), batchMessageIDs(t, first))

	n, err := env.outbox.Len(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, n)

	// written or not, nothing is delivered until bob acks
	env.assertAllSent(msgs, bob.ID)

	// a message sent after the failure queues behind the requeued ones
	later := env.sendN(chat, alice, 1)

	retry := &fakeConn{}
	sent, err = FlushOutbox(env.msgContext(bob, retry))
	require.NoError(t, err)
	assert.Equal(t, 11, sent)

	frames = retry.received()
	require.Len(t, frames, 1)
	want := append(idsOf(msgs[flushBatchSize:]), later[0].ID)
	assert.Equal(t, want, batchMessageIDs(t, decodeBatch(t, frames[0])))
	env.assertAllSent(append(msgs, later...), bob.ID)
}

func TestFlushOutbox_GapLeadsFirstBatch(t *testing.T) {
	env := newFlushEnv(t, 2)
	alice := env.h.CreateUser("alice")
	bob := env.h.CreateUser("bob")
	chat := env.h.CreateChat(models.ChatDirect, alice, bob)

	msgs := env.sendN(chat, alice, 4)

	conn := &fakeConn{}
	sent, err := FlushOutbox(env.msgContext(bob, conn))
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	frames := conn.received()
	require.Len(t, frames, 1)
	b := decodeBatch(t, frames[0])
	require.Len(t, b.Messages, 3)
	assert.Equal(t, notify.EventGap, b.Messages[0].Type)
	var gap notify.GapPayload
	require.NoError(t, json.Unmarshal(b.Messages[0].Payload, &gap))
	assert.EqualValues(t, 2, gap.Dropped)
	assert.Equal(t, idsOf(msgs[2:]), batchMessageIDs(t, b))

	env.assertAllSent(msgs, bob.ID)
}

func TestFlushOutbox_FailedFirstWriteKeepsGap(t *testing.T) {
	env := newFlushEnv(t, 2)
	alice := env.h.CreateUser("alice")
	bob := env.h.CreateUser("bob")
	chat := env.h.CreateChat(models.ChatDirect, alice, bob)

	msgs := env.sendN(chat, alice, 3)

	sent, err := FlushOutbox(env.msgContext(bob, &fakeConn{writeErr: errors.New("broken pipe")}))
	require.Error(t, err)
	assert.Zero(t, sent)

	conn := &fakeConn{}
	sent, err = FlushOutbox(env.msgContext(bob, conn))
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	b := decodeBatch(t, conn.received()[0])
	assert.Equal(t, notify.EventGap, b.Messages[0].Type)
	assert.Equal(t, idsOf(msgs[1:]), batchMessageIDs(t, b))
}
