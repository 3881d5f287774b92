package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"coinquest/internal/auth/models"
	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/sentinel"
)

type InMemorySessionStoreSuite struct {
	suite.Suite
	store *InMemorySessionStore
	ctx   context.Context
	now   time.Time
	user  id.UserID
}

func TestInMemorySessionStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemorySessionStoreSuite))
}

func (s *InMemorySessionStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.user = id.UserID(uuid.New())
}

func (s *InMemorySessionStoreSuite) newSession(createdAt time.Time, ttl time.Duration) *models.Session {
	session, err := models.NewSession(id.SessionID(uuid.New()), uuid.NewString(), s.user, ttl, createdAt)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, session))
	return session
}

func (s *InMemorySessionStoreSuite) TestCreateAndFind() {
	session := s.newSession(s.now, time.Hour)

	found, err := s.store.FindByID(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session, found)

	s.Run("duplicate token rejected", func() {
		dup := *session
		dup.ID = id.SessionID(uuid.New())
		s.ErrorIs(s.store.Create(s.ctx, &dup), sentinel.ErrConflict)
	})
}

func (s *InMemorySessionStoreSuite) TestListByUserNewestFirst() {
	older := s.newSession(s.now.Add(-time.Hour), 2*time.Hour)
	newer := s.newSession(s.now, 2*time.Hour)
	other, err := models.NewSession(id.SessionID(uuid.New()), uuid.NewString(), id.UserID(uuid.New()), time.Hour, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, other))

	sessions, err := s.store.ListByUser(s.ctx, s.user)
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.Equal(newer.ID, sessions[0].ID)
	s.Equal(older.ID, sessions[1].ID)
}

func (s *InMemorySessionStoreSuite) TestTouchAndDelete() {
	session := s.newSession(s.now, time.Hour)
	later := s.now.Add(10 * time.Minute)

	s.Require().NoError(s.store.Touch(s.ctx, session.ID, later))
	found, err := s.store.FindByID(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(later, found.LastAccessed)

	s.Require().NoError(s.store.Delete(s.ctx, session.ID))
	_, err = s.store.FindByID(s.ctx, session.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, session.ID), sentinel.ErrNotFound)
	s.ErrorIs(s.store.Touch(s.ctx, session.ID, later), sentinel.ErrNotFound)
}

func (s *InMemorySessionStoreSuite) TestDeleteExpired() {
	expired := s.newSession(s.now.Add(-2*time.Hour), time.Hour)
	live := s.newSession(s.now, time.Hour)

	removed, err := s.store.DeleteExpired(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(1, removed)

	_, err = s.store.FindByID(s.ctx, expired.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByID(s.ctx, live.ID)
	s.NoError(err)

	removed, err = s.store.DeleteExpired(s.ctx, s.now)
	s.Require().NoError(err)
	s.Zero(removed)
}
