package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultPresenceTTL = 300 * time.Second
	DefaultTypingTTL   = 10 * time.Second
)

// PresenceStore tracks who is online and who is typing. Everything here is
// best effort: TTL expiry is the only cleanup for clients that vanish, and
// write failures are logged rather than returned.
type PresenceStore struct {
	store       EphemeralStore
	log         zerolog.Logger
	presenceTTL time.Duration
	typingTTL   time.Duration
	now         func() time.Time
}

func NewPresenceStore(store EphemeralStore, log zerolog.Logger, presenceTTL, typingTTL time.Duration) *PresenceStore {
	if presenceTTL <= 0 {
		presenceTTL = DefaultPresenceTTL
	}
	if typingTTL <= 0 {
		typingTTL = DefaultTypingTTL
	}
	return &PresenceStore{
		store:       store,
		log:         log.With().Str("component", "presence").Logger(),
		presenceTTL: presenceTTL,
		typingTTL:   typingTTL,
		now:         time.Now,
	}
}

func onlineKey(userID uuid.UUID) string {
	return fmt.Sprintf("online:%s", userID)
}

func typingKey(chatID uuid.UUID) string {
	return fmt.Sprintf("typing:%s", chatID)
}

// write runs fn and retries it once before giving up quietly.
func (p *PresenceStore) write(ctx context.Context, op string, fn func(context.Context) error) {
	err := fn(ctx)
	if err != nil && ctx.Err() == nil {
		err = fn(ctx)
	}
	if err != nil {
		p.log.Warn().Err(err).Str("op", op).Msg("presence write dropped")
	}
}

// MarkOnline sets or refreshes the user's online key. Heartbeats call this too.
func (p *PresenceStore) MarkOnline(ctx context.Context, userID uuid.UUID) {
	value := []byte(strconv.FormatInt(p.now().Unix(), 10))
	p.write(ctx, "mark_online", func(ctx context.Context) error {
		return p.store.Set(ctx, onlineKey(userID), value, p.presenceTTL)
	})
}

// MarkOffline removes the online key immediately.
func (p *PresenceStore) MarkOffline(ctx context.Context, userID uuid.UUID) {
	p.write(ctx, "mark_offline", func(ctx context.Context) error {
		return p.store.Delete(ctx, onlineKey(userID))
	})
}

// IsOnline reports key existence. A store error reads as offline.
func (p *PresenceStore) IsOnline(ctx context.Context, userID uuid.UUID) bool {
	ok, err := p.store.Exists(ctx, onlineKey(userID))
	if err != nil {
		p.log.Warn().Err(err).Str("user_id", userID.String()).Msg("presence read failed, assuming offline")
		return false
	}
	return ok
}

// LastSeen returns the time of the last heartbeat while the user is online.
func (p *PresenceStore) LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, bool) {
	raw, err := p.store.Get(ctx, onlineKey(userID))
	if err != nil || raw == nil {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, 0), true
}

// SetTyping adds or removes userID from the chat's typing set. Each member
// carries its own expiry as its score, so members time out independently.
func (p *PresenceStore) SetTyping(ctx context.Context, chatID, userID uuid.UUID, isTyping bool) {
	key := typingKey(chatID)
	if !isTyping {
		p.write(ctx, "stop_typing", func(ctx context.Context) error {
			return p.store.ZRem(ctx, key, userID.String())
		})
		return
	}

	expiresAt := p.now().Add(p.typingTTL).UnixMilli()
	p.write(ctx, "start_typing", func(ctx context.Context) error {
		if err := p.store.ZAdd(ctx, key, float64(expiresAt), userID.String()); err != nil {
			return err
		}
		return p.store.Expire(ctx, key, p.typingTTL)
	})
}

// TypingUsers returns members whose typing entry has not expired.
func (p *PresenceStore) TypingUsers(ctx context.Context, chatID uuid.UUID) []uuid.UUID {
	key := typingKey(chatID)
	now := strconv.FormatInt(p.now().UnixMilli(), 10)

	if err := p.store.ZRemRangeByScore(ctx, key, "-inf", now); err != nil {
		p.log.Debug().Err(err).Str("chat_id", chatID.String()).Msg("typing prune failed")
	}
	members, err := p.store.ZRangeByScore(ctx, key, "("+now, "+inf")
	if err != nil {
		p.log.Warn().Err(err).Str("chat_id", chatID.String()).Msg("typing read failed")
		return nil
	}

	users := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if id, err := uuid.Parse(m); err == nil {
			users = append(users, id)
		}
	}
	return users
}
