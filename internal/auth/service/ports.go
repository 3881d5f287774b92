package service

import (
	"context"
	"time"

	logmodels "coinquest/internal/systemlog/models"
)

// TokenRevocationList tracks access-token IDs rejected before their expiry.
type TokenRevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// EventRecorder appends system log entries.
type EventRecorder interface {
	Record(ctx context.Context, event logmodels.Event) error
}
