package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsSentinelIdentity(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := Wrap(ErrStoreUnavailable, cause)

	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrStoreTimeout))
	assert.Equal(t, CodeUnavailable, CodeOf(err))
	assert.Equal(t, "store unavailable: dial tcp: i/o timeout", err.Error())
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), CodeUnknown},
		{"sentinel", ErrNotAParticipant, CodePermissionDenied},
		{"fmt wrapped", fmt.Errorf("send: %w", ErrInvalidReply), CodeInvalidArgument},
		{"transition", ErrInvalidTransition, CodeFailedPrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(ErrStoreTimeout))
	assert.True(t, Retryable(Wrap(ErrStoreTimeout, errors.New("ctx deadline"))))
	assert.False(t, Retryable(ErrInvalidContent))
	assert.False(t, Retryable(ErrStoreCorrupted))
}
