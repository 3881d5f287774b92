package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
)

type ModelsSuite struct {
	suite.Suite
	now time.Time
}

func TestModelsSuite(t *testing.T) {
	suite.Run(t, new(ModelsSuite))
}

func (s *ModelsSuite) SetupTest() {
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ModelsSuite) TestNewUser() {
	s.Run("normalizes email and starts active", func() {
		u, err := NewUser(id.UserID(uuid.New()), "  Jane@Example.COM ", " jane ", "$2a$hash", nil, s.now)
		s.Require().NoError(err)
		s.Equal("jane@example.com", u.Email)
		s.Equal("jane", u.Username)
		s.True(u.IsActive)
		s.False(u.IsSuperuser)
		s.Equal(s.now, u.CreatedAt)
	})

	s.Run("rejects malformed email", func() {
		for _, email := range []string{"", "plainaddress", "Jane <jane@example.com>", "jane@localhost"} {
			_, err := NewUser(id.UserID(uuid.New()), email, "jane", "hash", nil, s.now)
			s.Require().Error(err, email)
			s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		}
	})

	s.Run("rejects blank or oversized username", func() {
		_, err := NewUser(id.UserID(uuid.New()), "a@b.io", "   ", "hash", nil, s.now)
		s.Require().Error(err)

		_, err = NewUser(id.UserID(uuid.New()), "a@b.io", strings.Repeat("u", 65), "hash", nil, s.now)
		s.Require().Error(err)
	})
}

func (s *ModelsSuite) TestSessionExpiry() {
	sess, err := NewSession(id.SessionID(uuid.New()), "tok", id.UserID(uuid.New()), time.Hour, s.now)
	s.Require().NoError(err)

	s.False(sess.IsExpired(s.now.Add(59 * time.Minute)))
	s.True(sess.IsExpired(s.now.Add(time.Hour)))
	s.Equal(s.now, sess.LastAccessed)

	_, err = NewSession(id.SessionID(uuid.New()), "", id.UserID(uuid.New()), time.Hour, s.now)
	s.Require().Error(err)
	_, err = NewSession(id.SessionID(uuid.New()), "tok", id.UserID{}, time.Hour, s.now)
	s.Require().Error(err)
}
