package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type InMemoryTRLSuite struct {
	suite.Suite
	trl *InMemoryTRL
	now time.Time
}

func TestInMemoryTRLSuite(t *testing.T) {
	suite.Run(t, new(InMemoryTRLSuite))
}

func (s *InMemoryTRLSuite) SetupTest() {
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.trl = NewInMemoryTRL()
	s.trl.now = func() time.Time { return s.now }
}

func (s *InMemoryTRLSuite) TestRevocationLifecycle() {
	ctx := context.Background()

	s.Run("unknown jti is not revoked", func() {
		revoked, err := s.trl.IsRevoked(ctx, "nope")
		s.Require().NoError(err)
		s.False(revoked)
	})

	s.Run("revoked until ttl elapses", func() {
		s.Require().NoError(s.trl.RevokeToken(ctx, "jti-1", time.Minute))

		revoked, err := s.trl.IsRevoked(ctx, "jti-1")
		s.Require().NoError(err)
		s.True(revoked)

		s.now = s.now.Add(time.Minute)
		revoked, err = s.trl.IsRevoked(ctx, "jti-1")
		s.Require().NoError(err)
		s.False(revoked)
	})

	s.Run("non positive ttl is ignored", func() {
		s.Require().NoError(s.trl.RevokeToken(ctx, "jti-2", 0))
		revoked, err := s.trl.IsRevoked(ctx, "jti-2")
		s.Require().NoError(err)
		s.False(revoked)
	})
}
