package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(newViper(map[string]any{"JWT_SECRET": "test-secret"}))
	require.NoError(t, err)

	assert.Equal(t, 300*time.Second, cfg.Delivery.PresenceTTL)
	assert.Equal(t, 10*time.Second, cfg.Delivery.TypingTTL)
	assert.Equal(t, "redis", cfg.Delivery.OutboxBackend)
	assert.Equal(t, 1000, cfg.Delivery.OutboxMaxLen)
	assert.Equal(t, 3*time.Second, cfg.Delivery.StoreTimeout)
	assert.Equal(t, 3, cfg.Delivery.StoreMaxRetries)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.False(t, cfg.S3.Enabled())
	assert.Contains(t, cfg.Database.DSN(), "dbname=relay")
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{"missing secret", map[string]any{}},
		{"bad driver", map[string]any{"JWT_SECRET": "s", "DB_DRIVER": "mysql"}},
		{"bad outbox", map[string]any{"JWT_SECRET": "s", "OUTBOX_BACKEND": "kafka"}},
		{"zero ttl", map[string]any{"JWT_SECRET": "s", "PRESENCE_TTL": "0s"}},
		{"zero outbox", map[string]any{"JWT_SECRET": "s", "OUTBOX_MAX_LEN": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(newViper(tt.overrides))
			assert.Error(t, err)
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	cfg, err := Parse(newViper(map[string]any{
		"JWT_SECRET": "s",
		"DB_DRIVER":  "SQLite",
		"DB_PATH":    "/tmp/relay.db",
	}))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/relay.db", cfg.Database.DSN())
}
