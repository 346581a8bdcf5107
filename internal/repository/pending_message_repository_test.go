package repository_test

import (
	"context"
	"testing"

	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/noteduco342/relay-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMessageRepository_FIFODrain(t *testing.T) {
	h := testutil.NewTestHelper(t)
	a, b := h.CreateUser("alice"), h.CreateUser("bob")
	chat := h.CreateChat(models.ChatDirect, a, b)
	outbox := repository.NewPendingMessageRepository(h.DB, 10, zerolog.Nop())
	ctx := context.Background()

	var sent []*models.Message
	for i := 0; i < 3; i++ {
		m := h.CreateMessage(chat, a, "")
		sent = append(sent, m)
		require.NoError(t, outbox.Enqueue(ctx, b.ID, models.NewMessageRef(m)))
	}

	n, err := outbox.Len(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	refs, err := outbox.Drain(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	for i, m := range sent {
		assert.Equal(t, m.ID, refs[i].MessageID)
		assert.Equal(t, m.Seq, refs[i].Seq)
	}

	refs, err = outbox.Drain(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestPendingMessageRepository_OverflowRecordsGap(t *testing.T) {
	h := testutil.NewTestHelper(t)
	a, b := h.CreateUser("alice"), h.CreateUser("bob")
	chat := h.CreateChat(models.ChatDirect, a, b)
	outbox := repository.NewPendingMessageRepository(h.DB, 2, zerolog.Nop())
	ctx := context.Background()

	var errs []error
	var last []*models.Message
	for i := 0; i < 5; i++ {
		m := h.CreateMessage(chat, a, "")
		last = append(last, m)
		errs = append(errs, outbox.Enqueue(ctx, b.ID, models.NewMessageRef(m)))
	}
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	for _, err := range errs[2:] {
		assert.ErrorIs(t, err, apperrors.ErrQueueOverflow)
	}

	refs, err := outbox.Drain(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, models.RefGap, refs[0].Kind)
	assert.EqualValues(t, 3, refs[0].Dropped)
	assert.Equal(t, last[3].ID, refs[1].MessageID)
	assert.Equal(t, last[4].ID, refs[2].MessageID)
}

func TestPendingMessageRepository_CascadesWithMessage(t *testing.T) {
	h := testutil.NewTestHelper(t)
	a, b := h.CreateUser("alice"), h.CreateUser("bob")
	chat := h.CreateChat(models.ChatDirect, a, b)
	m := h.CreateMessage(chat, a, "")
	outbox := repository.NewPendingMessageRepository(h.DB, 10, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, outbox.Enqueue(ctx, b.ID, models.NewMessageRef(m)))
	require.NoError(t, h.DB.Delete(&models.Message{}, "id = ?", m.ID).Error)

	n, err := outbox.Len(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestPendingMessageRepository_RequeueGoesAheadOfNewerEntries(t *testing.T) {
	h := testutil.NewTestHelper(t)
	a, b := h.CreateUser("alice"), h.CreateUser("bob")
	chat := h.CreateChat(models.ChatDirect, a, b)
	outbox := repository.NewPendingMessageRepository(h.DB, 10, zerolog.Nop())
	ctx := context.Background()

	m1, m2 := h.CreateMessage(chat, a, "one"), h.CreateMessage(chat, a, "two")
	require.NoError(t, outbox.Enqueue(ctx, b.ID, models.NewMessageRef(m1)))
	require.NoError(t, outbox.Enqueue(ctx, b.ID, models.NewMessageRef(m2)))

	drained, err := outbox.Drain(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, drained, 2)

	// lands while the drained batch is still in flight
	m3 := h.CreateMessage(chat, a, "three")
	require.NoError(t, outbox.Enqueue(ctx, b.ID, models.NewMessageRef(m3)))

	require.NoError(t, outbox.Requeue(ctx, b.ID, drained))

	// a second failed round keeps its place too
	again, err := outbox.Drain(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, again, 3)
	require.NoError(t, outbox.Requeue(ctx, b.ID, again[:2]))
	m4 := h.CreateMessage(chat, a, "four")
	require.NoError(t, outbox.Enqueue(ctx, b.ID, models.NewMessageRef(m4)))

	refs, err := outbox.Drain(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, m1.ID, refs[0].MessageID)
	assert.Equal(t, m2.ID, refs[1].MessageID)
	assert.Equal(t, m4.ID, refs[2].MessageID)
}

func TestPendingMessageRepository_RequeueKeepsGapAndBound(t *testing.T) {
	h := testutil.NewTestHelper(t)
	a, b := h.CreateUser("alice"), h.CreateUser("bob")
	chat := h.CreateChat(models.ChatDirect, a, b)
	outbox := repository.NewPendingMessageRepository(h.DB, 2, zerolog.Nop())
	ctx := context.Background()

	m1, m2 := h.CreateMessage(chat, a, ""), h.CreateMessage(chat, a, "")
	drained := []models.MessageRef{models.NewGapRef(4), models.NewMessageRef(m1), models.NewMessageRef(m2)}

	m3 := h.CreateMessage(chat, a, "")
	require.NoError(t, outbox.Enqueue(ctx, b.ID, models.NewMessageRef(m3)))

	err := outbox.Requeue(ctx, b.ID, drained)
	assert.ErrorIs(t, err, apperrors.ErrQueueOverflow)

	refs, err := outbox.Drain(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, models.RefGap, refs[0].Kind)
	assert.EqualValues(t, 5, refs[0].Dropped)
	assert.Equal(t, m2.ID, refs[1].MessageID)
	assert.Equal(t, m3.ID, refs[2].MessageID)
}
