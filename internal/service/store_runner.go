package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/rs/zerolog"
)

const (
	DefaultStoreTimeout    = 3 * time.Second
	DefaultStoreMaxRetries = 3
)

// StoreRunner bounds durable store calls. Each attempt gets its own deadline;
// timed out attempts are retried with exponential backoff and give up with
// ErrStoreUnavailable. Other failures return immediately.
type StoreRunner struct {
	timeout    time.Duration
	maxRetries uint64
	log        zerolog.Logger

	initialInterval time.Duration
}

func NewStoreRunner(timeout time.Duration, maxRetries int, log zerolog.Logger) *StoreRunner {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	if maxRetries < 0 {
		maxRetries = DefaultStoreMaxRetries
	}
	return &StoreRunner{
		timeout:         timeout,
		maxRetries:      uint64(maxRetries),
		log:             log,
		initialInterval: 50 * time.Millisecond,
	}
}

func (r *StoreRunner) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, r.maxRetries), ctx)
}

// Run executes fn under the store deadline and retry policy.
func (r *StoreRunner) Run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		err := repository.Classify(fn(callCtx))
		if err == nil {
			return nil
		}
		if apperrors.Retryable(err) && ctx.Err() == nil {
			r.log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("store call timed out")
			return err
		}
		return backoff.Permanent(err)
	}, r.policy(ctx))

	// A caller that gave up sees the timeout itself, not unavailability.
	err = repository.Classify(err)
	if apperrors.Retryable(err) && ctx.Err() == nil {
		r.log.Error().Err(err).Str("op", op).Int("attempts", attempt).Msg("store unavailable")
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return err
}
