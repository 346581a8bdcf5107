package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rc.Close() })
	return mr, rc
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPresence(t *testing.T) (*miniredis.Miniredis, *PresenceStore, *fakeClock) {
	mr, rc := newTestRedis(t)
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	p := NewPresenceStore(rc, zerolog.Nop(), 30*time.Second, 10*time.Second)
	p.now = clock.Now
	return mr, p, clock
}

func TestPresence_OnlineExpiresWithoutHeartbeat(t *testing.T) {
	mr, p, _ := newTestPresence(t)
	ctx := context.Background()
	u := uuid.New()

	assert.False(t, p.IsOnline(ctx, u))
	p.MarkOnline(ctx, u)
	assert.True(t, p.IsOnline(ctx, u))

	mr.FastForward(29 * time.Second)
	assert.True(t, p.IsOnline(ctx, u))

	mr.FastForward(2 * time.Second)
	assert.False(t, p.IsOnline(ctx, u))
}

func TestPresence_HeartbeatRefreshesTTL(t *testing.T) {
	mr, p, _ := newTestPresence(t)
	ctx := context.Background()
	u := uuid.New()

	p.MarkOnline(ctx, u)
	mr.FastForward(20 * time.Second)
	p.MarkOnline(ctx, u)
	mr.FastForward(20 * time.Second)
	assert.True(t, p.IsOnline(ctx, u))
}

func TestPresence_MarkOfflineIsImmediate(t *testing.T) {
	_, p, _ := newTestPresence(t)
	ctx := context.Background()
	u := uuid.New()

	p.MarkOnline(ctx, u)
	p.MarkOffline(ctx, u)
	assert.False(t, p.IsOnline(ctx, u))

	// offline for an unknown user is a no-op
	p.MarkOffline(ctx, uuid.New())
}

func TestPresence_LastSeen(t *testing.T) {
	_, p, clock := newTestPresence(t)
	ctx := context.Background()
	u := uuid.New()

	_, ok := p.LastSeen(ctx, u)
	assert.False(t, ok)

	p.MarkOnline(ctx, u)
	seen, ok := p.LastSeen(ctx, u)
	require.True(t, ok)
	assert.Equal(t, clock.t.Unix(), seen.Unix())
}

func TestPresence_TypingMembersExpireIndependently(t *testing.T) {
	_, p, clock := newTestPresence(t)
	ctx := context.Background()
	chat := uuid.New()
	alice, bob := uuid.New(), uuid.New()

	p.SetTyping(ctx, chat, alice, true)
	clock.Advance(6 * time.Second)
	p.SetTyping(ctx, chat, bob, true)

	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, p.TypingUsers(ctx, chat))

	clock.Advance(5 * time.Second)
	assert.Equal(t, []uuid.UUID{bob}, p.TypingUsers(ctx, chat))

	clock.Advance(5 * time.Second)
	assert.Empty(t, p.TypingUsers(ctx, chat))
}

func TestPresence_StopTyping(t *testing.T) {
	_, p, _ := newTestPresence(t)
	ctx := context.Background()
	chat, u := uuid.New(), uuid.New()

	p.SetTyping(ctx, chat, u, true)
	p.SetTyping(ctx, chat, u, false)
	assert.Empty(t, p.TypingUsers(ctx, chat))
}

func TestPresence_StoreDownDegradesToOffline(t *testing.T) {
	mr, p, _ := newTestPresence(t)
	ctx := context.Background()
	u := uuid.New()

	p.MarkOnline(ctx, u)
	mr.Close()

	assert.NotPanics(t, func() { p.MarkOnline(ctx, u) })
	assert.False(t, p.IsOnline(ctx, u))
	assert.Empty(t, p.TypingUsers(ctx, uuid.New()))
}
