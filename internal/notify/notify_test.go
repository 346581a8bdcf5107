package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{subject: subject, data: data})
	return nil
}

type recordingNotifier struct {
	calls []string
	err   error
}

func (r *recordingNotifier) DeliverMessage(context.Context, uuid.UUID, *models.Message) error {
	r.calls = append(r.calls, EventMessage)
	return r.err
}

func (r *recordingNotifier) MessageUpdated(context.Context, uuid.UUID, *models.Message) error {
	r.calls = append(r.calls, EventMessageUpdated)
	return r.err
}

func (r *recordingNotifier) ReceiptUpdated(context.Context, uuid.UUID, *models.MessageReceipt) error {
	r.calls = append(r.calls, EventReceipt)
	return r.err
}

func (r *recordingNotifier) TypingChanged(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, bool) error {
	r.calls = append(r.calls, EventTyping)
	return r.err
}

func testMessage() *models.Message {
	return &models.Message{
		ID:        uuid.New(),
		ChatID:    uuid.New(),
		SenderID:  uuid.New(),
		Seq:       7,
		Type:      models.TextMessage,
		Content:   "hello",
		CreatedAt: time.Now().UTC(),
	}
}

func TestNATSNotifier_PublishesOnUserSubject(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNATSNotifier(pub)
	recipient := uuid.New()
	msg := testMessage()

	require.NoError(t, n.DeliverMessage(context.Background(), recipient, msg))
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "relay.user."+recipient.String()+".message", pub.msgs[0].subject)

	var got struct {
		Type    string                 `json:"type"`
		Payload models.MessageResponse `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(pub.msgs[0].data, &got))
	assert.Equal(t, EventMessage, got.Type)
	assert.Equal(t, msg.ID, got.Payload.ID)
	assert.Equal(t, int64(7), got.Payload.Seq)
	assert.Equal(t, "hello", got.Payload.Content)
}

func TestNATSNotifier_Typing(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNATSNotifier(pub)
	recipient, chat, typer := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, n.TypingChanged(context.Background(), recipient, chat, typer, true))
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, Subject(recipient, EventTyping), pub.msgs[0].subject)

	var got struct {
		Payload TypingPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(pub.msgs[0].data, &got))
	assert.Equal(t, TypingPayload{ChatID: chat, UserID: typer, Typing: true}, got.Payload)
}

func TestNATSNotifier_PublishError(t *testing.T) {
	n := NewNATSNotifier(&fakePublisher{err: errors.New("nats: connection closed")})
	err := n.ReceiptUpdated(context.Background(), uuid.New(), &models.MessageReceipt{Status: models.StatusRead})
	assert.Error(t, err)
}

func TestFanout_PrimaryDecidesResult(t *testing.T) {
	primary := &recordingNotifier{err: errors.New("offline")}
	mirror := &recordingNotifier{}
	f := &Fanout{Primary: primary, Mirrors: []service.Notifier{mirror}, Log: zerolog.Nop()}

	err := f.DeliverMessage(context.Background(), uuid.New(), testMessage())
	assert.Error(t, err)
	assert.Equal(t, []string{EventMessage}, primary.calls)
	assert.Equal(t, []string{EventMessage}, mirror.calls)
}

func TestFanout_MirrorFailureIgnored(t *testing.T) {
	primary := &recordingNotifier{}
	mirror := &recordingNotifier{err: errors.New("publish failed")}
	f := &Fanout{Primary: primary, Mirrors: []service.Notifier{mirror}, Log: zerolog.Nop()}

	ctx := context.Background()
	assert.NoError(t, f.MessageUpdated(ctx, uuid.New(), testMessage()))
	assert.NoError(t, f.ReceiptUpdated(ctx, uuid.New(), &models.MessageReceipt{}))
	assert.NoError(t, f.TypingChanged(ctx, uuid.New(), uuid.New(), uuid.New(), false))
	assert.Equal(t, []string{EventMessageUpdated, EventReceipt, EventTyping}, mirror.calls)
}

func TestBatchEnvelope(t *testing.T) {
	b := Batch([]Event{GapEvent(3), MessageEvent(testMessage())})
	assert.Equal(t, EventBatch, b["type"])
	assert.Equal(t, 2, b["count"])
}
