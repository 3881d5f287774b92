package models

import (
	"net/mail"
	"strings"
	"time"

	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
)

const (
	MinPasswordLength = 8
	maxUsernameLength = 64
	maxEmailLength    = 254
)

// User is the identity that owns every ledger record.
//
// Invariants:
//   - Email and Username are non-empty and globally unique (enforced by the store)
//   - HashedPassword never holds the plaintext password
type User struct {
	ID             id.UserID
	Email          string
	Username       string
	HashedPassword string
	FullName       *string
	IsActive       bool
	IsSuperuser    bool
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// NewUser validates identity fields and returns an active, non-superuser account.
func NewUser(userID id.UserID, email, username, hashedPassword string, fullName *string, now time.Time) (*User, error) {
	email = NormalizeEmail(email)
	username = strings.TrimSpace(username)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username is required")
	}
	if len(username) > maxUsernameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username must be at most 64 characters")
	}
	if hashedPassword == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}
	return &User{
		ID:             userID,
		Email:          email,
		Username:       username,
		HashedPassword: hashedPassword,
		FullName:       fullName,
		IsActive:       true,
		CreatedAt:      now,
	}, nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "email is required")
	}
	if len(email) > maxEmailLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.Index(email, "@"):], ".") {
		return dErrors.New(dErrors.CodeInvariantViolation, "email is not a valid address")
	}
	return nil
}
