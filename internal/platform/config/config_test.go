package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "")
		t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")
		t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "")
		t.Setenv("KAFKA_BROKERS", "")
		t.Setenv("TRUSTED_PROXIES", "")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL)
		assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
		assert.Equal(t, time.Hour, cfg.SessionPurge)
		assert.Empty(t, cfg.Kafka.Brokers)
		assert.Empty(t, cfg.TrustedProxies)
		assert.Equal(t, 20, cfg.RateLimit.AuthRequests)
		assert.Equal(t, time.Minute, cfg.RateLimit.AuthWindow)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("ADDR", ":9090")
		t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
		t.Setenv("SESSION_PURGE_INTERVAL", "10m")
		t.Setenv("RATE_LIMIT_AUTH_REQUESTS", "0")
		t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, 10*time.Minute, cfg.SessionPurge)
		assert.Zero(t, cfg.RateLimit.AuthRequests)
		assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
	})

	t.Run("malformed number", func(t *testing.T) {
		t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "seven")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REFRESH_TOKEN_EXPIRE_DAYS")
	})
}

func TestValidate(t *testing.T) {
	base := Config{
		Environment:  "production",
		SessionPurge: time.Hour,
		Database:     DatabaseConfig{URL: "postgres://localhost/coinquest"},
		Auth: AuthConfig{
			SigningKey: DevSigningKey,
			AccessTTL:  time.Minute,
			RefreshTTL: time.Hour,
		},
	}

	t.Run("dev key rejected in production", func(t *testing.T) {
		err := base.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SIGNING_KEY")
	})

	t.Run("short key rejected in production", func(t *testing.T) {
		cfg := base
		cfg.Auth.SigningKey = "short"
		require.Error(t, cfg.Validate())
	})

	t.Run("strong key accepted", func(t *testing.T) {
		cfg := base
		cfg.Auth.SigningKey = "0123456789abcdef0123456789abcdef"
		require.NoError(t, cfg.Validate())
	})

	t.Run("dev key fine outside production", func(t *testing.T) {
		cfg := base
		cfg.Environment = "development"
		require.NoError(t, cfg.Validate())
	})

	t.Run("non positive ttl", func(t *testing.T) {
		cfg := base
		cfg.Environment = "development"
		cfg.Auth.AccessTTL = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("rate limit needs a window", func(t *testing.T) {
		cfg := base
		cfg.Environment = "development"
		cfg.RateLimit = RateLimitConfig{AuthRequests: 5}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RATE_LIMIT_AUTH_WINDOW")
	})
}
