package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pstrings "coinquest/pkg/platform/strings"
)

// DevSigningKey is used when JWT_SIGNING_KEY is unset. Validate rejects it in production.
const DevSigningKey = "dev-secret-key-change-in-production"

const minProductionKeyLen = 32

// Config is built once at startup and passed to constructors.
type Config struct {
	AppName     string
	Version     string
	Environment string
	LogLevel    string
	Addr        string
	CORSOrigins string
	// TrustedProxies are addresses or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string
	SessionPurge   time.Duration
	Database       DatabaseConfig
	Redis          RedisConfig
	Kafka          KafkaConfig
	Auth           AuthConfig
	RateLimit      RateLimitConfig
}

// DatabaseConfig configures the Postgres pool. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the revocation list backend. An empty URL keeps it in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures system-log fan-out. No brokers disables publishing.
type KafkaConfig struct {
	Brokers        []string
	SystemLogTopic string
}

// AuthConfig holds token signing and lifetime settings.
type AuthConfig struct {
	SigningKey string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// RateLimitConfig bounds requests per client IP on the public auth endpoints.
// A non-positive AuthRequests disables the limit.
type RateLimitConfig struct {
	AuthRequests int
	AuthWindow   time.Duration
}

// IsProduction reports whether the process runs with production safeguards.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// FromEnv reads configuration from the environment, loading a .env file
// first when one is present.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	accessMinutes, err := intEnv("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	if err != nil {
		return Config{}, err
	}
	refreshDays, err := intEnv("REFRESH_TOKEN_EXPIRE_DAYS", 7)
	if err != nil {
		return Config{}, err
	}
	maxOpen, err := intEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, err
	}
	maxIdle, err := intEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return Config{}, err
	}
	connLifetime, err := durationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}
	purge, err := durationEnv("SESSION_PURGE_INTERVAL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	redisCfg, err := redisFromEnv()
	if err != nil {
		return Config{}, err
	}
	authRequests, err := intEnv("RATE_LIMIT_AUTH_REQUESTS", 20)
	if err != nil {
		return Config{}, err
	}
	authWindow, err := durationEnv("RATE_LIMIT_AUTH_WINDOW", time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:        stringEnv("APP_NAME", "CoinQuest Finance Tracker"),
		Version:        stringEnv("APP_VERSION", "1.0.0"),
		Environment:    stringEnv("ENVIRONMENT", "development"),
		LogLevel:       stringEnv("LOG_LEVEL", "info"),
		Addr:           stringEnv("ADDR", ":8080"),
		CORSOrigins:    stringEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
		SessionPurge:   purge,
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    maxOpen,
			MaxIdleConns:    maxIdle,
			ConnMaxLifetime: connLifetime,
		},
		Redis: redisCfg,
		Kafka: KafkaConfig{
			Brokers:        splitList(os.Getenv("KAFKA_BROKERS")),
			SystemLogTopic: stringEnv("KAFKA_SYSTEM_LOG_TOPIC", "coinquest.system-logs"),
		},
		Auth: AuthConfig{
			SigningKey: stringEnv("JWT_SIGNING_KEY", DevSigningKey),
			Issuer:     stringEnv("JWT_ISSUER", "coinquest"),
			AccessTTL:  time.Duration(accessMinutes) * time.Minute,
			RefreshTTL: time.Duration(refreshDays) * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			AuthRequests: authRequests,
			AuthWindow:   authWindow,
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings that are unsafe or unusable.
func (c Config) Validate() error {
	var errs []error
	if c.Auth.AccessTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRE_DAYS must be positive"))
	}
	if c.SessionPurge < 0 {
		errs = append(errs, errors.New("SESSION_PURGE_INTERVAL must not be negative"))
	}
	if c.RateLimit.AuthRequests > 0 && c.RateLimit.AuthWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_AUTH_WINDOW must be positive"))
	}
	if c.IsProduction() {
		if c.Auth.SigningKey == DevSigningKey {
			errs = append(errs, errors.New("JWT_SIGNING_KEY must be set in production"))
		} else if len(c.Auth.SigningKey) < minProductionKeyLen {
			errs = append(errs, fmt.Errorf("JWT_SIGNING_KEY must be at least %d bytes in production", minProductionKeyLen))
		}
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL must be set in production"))
		}
	}
	return errors.Join(errs...)
}

func redisFromEnv() (RedisConfig, error) {
	pool, err := intEnv("REDIS_POOL_SIZE", 10)
	if err != nil {
		return RedisConfig{}, err
	}
	minIdle, err := intEnv("REDIS_MIN_IDLE_CONNS", 2)
	if err != nil {
		return RedisConfig{}, err
	}
	dial, err := durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second)
	if err != nil {
		return RedisConfig{}, err
	}
	read, err := durationEnv("REDIS_READ_TIMEOUT", 3*time.Second)
	if err != nil {
		return RedisConfig{}, err
	}
	write, err := durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second)
	if err != nil {
		return RedisConfig{}, err
	}
	return RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     pool,
		MinIdleConns: minIdle,
		DialTimeout:  dial,
		ReadTimeout:  read,
		WriteTimeout: write,
	}, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	return pstrings.SplitList(raw)
}
