package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/noteduco342/relay-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_ListBySeqPages(t *testing.T) {
	h := testutil.NewTestHelper(t)
	a, b := h.CreateUser("alice"), h.CreateUser("bob")
	chat := h.CreateChat(models.ChatDirect, a, b)
	for i := 0; i < 5; i++ {
		h.CreateMessage(chat, a, "")
	}
	repo := repository.NewMessageRepository(h.DB)
	ctx := context.Background()

	page, err := repo.ListBySeq(ctx, chat.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.EqualValues(t, 4, page[0].Seq)
	assert.EqualValues(t, 5, page[1].Seq)

	page, err = repo.ListBySeq(ctx, chat.ID, 4, 10)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.EqualValues(t, 1, page[0].Seq)
	assert.EqualValues(t, 3, page[2].Seq)
}

func TestMessageRepository_DuplicateSeqRejected(t *testing.T) {
	h := testutil.NewTestHelper(t)
	a, b := h.CreateUser("alice"), h.CreateUser("bob")
	chat := h.CreateChat(models.ChatDirect, a, b)
	m := h.CreateMessage(chat, a, "first")
	repo := repository.NewMessageRepository(h.DB)

	err := repo.Create(context.Background(), &models.Message{
		ChatID: chat.ID, SenderID: b.ID, Seq: m.Seq, Type: models.TextMessage,
		Content: "clash", CreatedAt: time.Now().UTC(),
	})
	assert.True(t, repository.IsDuplicate(err), "got %v", err)
}

func TestMessageRepository_ClientIDLookup(t *testing.T) {
	h := testutil.NewTestHelper(t)
	a, b := h.CreateUser("alice"), h.CreateUser("bob")
	chat := h.CreateChat(models.ChatDirect, a, b)
	repo := repository.NewMessageRepository(h.DB)
	ctx := context.Background()

	clientID := "c-1"
	msg := &models.Message{
		ChatID: chat.ID, SenderID: a.ID, Seq: 1, ClientID: &clientID,
		Type: models.TextMessage, Content: "hi", CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, msg))

	got, err := repo.FindByClientID(ctx, a.ID, clientID)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, got.ID)

	_, err = repo.FindByClientID(ctx, b.ID, clientID)
	assert.True(t, repository.IsNotFound(err))
}

func TestMessageRepository_EditAndDeleteKeepContent(t *testing.T) {
	h := testutil.NewTestHelper(t)
	a, b := h.CreateUser("alice"), h.CreateUser("bob")
	chat := h.CreateChat(models.ChatDirect, a, b)
	msg := h.CreateMessage(chat, a, "original")
	repo := repository.NewMessageRepository(h.DB)
	ctx := context.Background()

	require.NoError(t, repo.SetEdited(ctx, msg.ID, "edited", time.Now().UTC()))
	got, err := repo.FindByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Content)
	assert.Equal(t, "edited", got.Body())

	require.NoError(t, repo.SetDeleted(ctx, msg.ID, time.Now().UTC()))
	got, err = repo.FindByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Content)
	assert.Equal(t, "", got.Body())

	assert.True(t, repository.IsNotFound(repo.SetEdited(ctx, msg.ID, "again", time.Now().UTC())))
	assert.True(t, repository.IsNotFound(repo.SetDeleted(ctx, uuid.New(), time.Now().UTC())))
}

func TestMessageRepository_MediaPreloaded(t *testing.T) {
	h := testutil.NewTestHelper(t)
	a, b := h.CreateUser("alice"), h.CreateUser("bob")
	chat := h.CreateChat(models.ChatDirect, a, b)
	msg := h.CreateMessage(chat, a, "pic")
	repo := repository.NewMessageRepository(h.DB)
	ctx := context.Background()

	require.NoError(t, repo.AddMedia(ctx, &models.Media{
		MessageID: msg.ID, ObjectKey: "k", URL: "http://x/k", MimeType: "image/png", Size: 10,
	}))
	got, err := repo.FindByID(ctx, msg.ID)
	require.NoError(t, err)
	require.Len(t, got.Media, 1)
	assert.Equal(t, "image/png", got.Media[0].MimeType)
}
