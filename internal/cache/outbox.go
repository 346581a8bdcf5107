package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const DefaultOutboxMaxLen = 1000

// KEYS[1] list, KEYS[2] gap counter. ARGV[1] payload, ARGV[2] max length.
// Returns how many of the oldest entries were trimmed.
var enqueueScript = redis.NewScript(`
local n = redis.call('RPUSH', KEYS[1], ARGV[1])
local max = tonumber(ARGV[2])
if max > 0 and n > max then
	local over = n - max
	redis.call('LTRIM', KEYS[1], over, -1)
	redis.call('INCRBY', KEYS[2], over)
	return over
end
return 0
`)

// Returns {gap, item1, item2, ...} and clears both keys.
var drainScript = redis.NewScript(`
local items = redis.call('LRANGE', KEYS[1], 0, -1)
local gap = redis.call('GET', KEYS[2])
redis.call('DEL', KEYS[1], KEYS[2])
table.insert(items, 1, gap or '0')
return items
`)

// KEYS[1] list, KEYS[2] gap counter. ARGV[1] max length, ARGV[2] gap count to
// restore, ARGV[3..] payloads oldest first. Pushes the payloads back onto the
// head so they drain before anything enqueued since.
var requeueScript = redis.NewScript(`
local gap = tonumber(ARGV[2])
if gap > 0 then
	redis.call('INCRBY', KEYS[2], gap)
end
for i = #ARGV, 3, -1 do
	redis.call('LPUSH', KEYS[1], ARGV[i])
end
local n = redis.call('LLEN', KEYS[1])
local max = tonumber(ARGV[1])
if max > 0 and n > max then
	local over = n - max
	redis.call('LTRIM', KEYS[1], over, -1)
	redis.call('INCRBY', KEYS[2], over)
	return over
end
return 0
`)

// RedisOutbox is a per-user FIFO of message references backed by Redis lists.
type RedisOutbox struct {
	redis  *RedisCache
	maxLen int
	log    zerolog.Logger
}

func NewRedisOutbox(rc *RedisCache, maxLen int, log zerolog.Logger) *RedisOutbox {
	if maxLen <= 0 {
		maxLen = DefaultOutboxMaxLen
	}
	return &RedisOutbox{
		redis:  rc,
		maxLen: maxLen,
		log:    log.With().Str("component", "outbox").Str("backend", "redis").Logger(),
	}
}

func outboxKey(userID uuid.UUID) string {
	return fmt.Sprintf("queue:messages:%s", userID)
}

func outboxGapKey(userID uuid.UUID) string {
	return fmt.Sprintf("queue:gap:%s", userID)
}

// Enqueue appends ref. If the queue was full the oldest entries are dropped
// and ErrQueueOverflow is returned; ref itself is always stored.
func (o *RedisOutbox) Enqueue(ctx context.Context, userID uuid.UUID, ref models.MessageRef) error {
	payload, err := ref.Encode()
	if err != nil {
		return fmt.Errorf("encode message ref: %w", err)
	}

	res, err := o.redis.Run(ctx, enqueueScript,
		[]string{outboxKey(userID), outboxGapKey(userID)},
		payload, o.maxLen)
	if err != nil {
		return err
	}
	if dropped, _ := res.(int64); dropped > 0 {
		o.log.Warn().
			Str("user_id", userID.String()).
			Int64("dropped", dropped).
			Msg("outbox full, dropped oldest entries")
		return apperrors.ErrQueueOverflow
	}
	return nil
}

// Drain atomically reads and clears the queue. When entries were dropped since
// the last drain, the first ref is a gap marker with the dropped count.
func (o *RedisOutbox) Drain(ctx context.Context, userID uuid.UUID) ([]models.MessageRef, error) {
	res, err := o.redis.Run(ctx, drainScript, []string{outboxKey(userID), outboxGapKey(userID)})
	if err != nil {
		return nil, err
	}
	raw, ok := res.([]interface{})
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("unexpected drain reply %T", res)
	}

	refs := make([]models.MessageRef, 0, len(raw))
	var gap int64
	if s, ok := raw[0].(string); ok {
		gap, _ = strconv.ParseInt(s, 10, 64)
	}
	if gap > 0 {
		refs = append(refs, models.NewGapRef(gap))
	}

	for _, item := range raw[1:] {
		s, ok := item.(string)
		if !ok {
			continue
		}
		ref, err := models.DecodeMessageRef([]byte(s))
		if err != nil {
			// Can't redeliver what we can't read. Count it as lost.
			o.log.Error().Err(err).Str("user_id", userID.String()).Msg("discarding undecodable outbox entry")
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Requeue puts refs back at the head of the queue in their original order.
// Gap markers are folded back into the gap counter.
func (o *RedisOutbox) Requeue(ctx context.Context, userID uuid.UUID, refs []models.MessageRef) error {
	if len(refs) == 0 {
		return nil
	}
	var gap int64
	args := make([]interface{}, 2, len(refs)+2)
	for _, ref := range refs {
		if ref.Kind == models.RefGap {
			gap += ref.Dropped
			continue
		}
		payload, err := ref.Encode()
		if err != nil {
			return fmt.Errorf("encode message ref: %w", err)
		}
		args = append(args, payload)
	}
	args[0], args[1] = o.maxLen, gap

	res, err := o.redis.Run(ctx, requeueScript,
		[]string{outboxKey(userID), outboxGapKey(userID)},
		args...)
	if err != nil {
		return err
	}
	if dropped, _ := res.(int64); dropped > 0 {
		o.log.Warn().
			Str("user_id", userID.String()).
			Int64("dropped", dropped).
			Msg("outbox full on requeue, dropped oldest entries")
		return apperrors.ErrQueueOverflow
	}
	return nil
}

func (o *RedisOutbox) Len(ctx context.Context, userID uuid.UUID) (int64, error) {
	return o.redis.ListLen(ctx, outboxKey(userID))
}
