package models

import (
	"time"

	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
)

// Session is one login. Records are never deduplicated: each login creates a
// new row, and rows past ExpiresAt are inert until purged.
type Session struct {
	ID           id.SessionID
	Token        string
	UserID       id.UserID
	ExpiresAt    time.Time
	CreatedAt    time.Time
	LastAccessed time.Time
	IPAddress    string
	UserAgent    string
	DeviceLabel  string
}

// NewSession builds a session valid for ttl from now.
func NewSession(sessionID id.SessionID, token string, userID id.UserID, ttl time.Duration, now time.Time) (*Session, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "session token is required")
	}
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "session owner is required")
	}
	if ttl <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "session lifetime must be positive")
	}
	return &Session{
		ID:           sessionID,
		Token:        token,
		UserID:       userID,
		ExpiresAt:    now.Add(ttl),
		CreatedAt:    now,
		LastAccessed: now,
	}, nil
}

// IsExpired reports whether the session is past its expiry at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionSummary is the client-facing view of a session.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	Device       string    `json:"device"`
	IPAddress    string    `json:"ip_address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsCurrent    bool      `json:"is_current"`
}

type SessionsResult struct {
	Sessions []SessionSummary `json:"sessions"`
}
