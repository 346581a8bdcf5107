package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactService(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	contacts := NewContactService(env.store, env.runner)
	ctx := context.Background()
	alice := env.h.CreateUser("alice")
	bob := env.h.CreateUser("bob")

	alias := "Bobby"
	c, err := contacts.Add(ctx, alice.ID, bob.ID, ContactInput{Alias: &alias})
	require.NoError(t, err)
	assert.Equal(t, "Bobby", *c.Alias)

	_, err = contacts.Add(ctx, alice.ID, bob.ID, ContactInput{})
	assert.Equal(t, apperrors.CodeAlreadyExists, apperrors.CodeOf(err))

	_, err = contacts.Add(ctx, alice.ID, alice.ID, ContactInput{})
	assert.ErrorIs(t, err, apperrors.ErrSelfContact)

	_, err = contacts.Add(ctx, alice.ID, uuid.New(), ContactInput{})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	long := strings.Repeat("a", 101)
	_, err = contacts.Update(ctx, alice.ID, bob.ID, ContactInput{Alias: &long})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAlias)

	_, err = contacts.Update(ctx, alice.ID, bob.ID, ContactInput{Blocked: true})
	require.NoError(t, err)

	_, err = contacts.Update(ctx, bob.ID, alice.ID, ContactInput{})
	assert.ErrorIs(t, err, apperrors.ErrContactNotFound)

	list, err := contacts.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Blocked)
	assert.Nil(t, list[0].Alias)
	assert.Equal(t, bob.Username, list[0].Contact.Username)
}
