//go:build integration

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
	"coinquest/pkg/testutil/containers"
)

type PostgresSessionStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
	now   time.Time
	user  id.UserID
}

func TestPostgresSessionStoreSuite(t *testing.T) {
	suite.Run(t, &PostgresSessionStoreSuite{pg: containers.GetManager().Postgres(t)})
}

func (s *PostgresSessionStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.pg.Truncate(s.ctx))
	s.store = NewPostgres(s.pg.DB)
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	u := uuid.New()
	_, err := s.pg.DB.ExecContext(s.ctx,
		`INSERT INTO users (id, email, username, hashed_password) VALUES ($1, $2, $3, 'x')`,
		u, "s@example.com", "s")
	s.Require().NoError(err)
	s.user = id.UserID(u)
}

func (s *PostgresSessionStoreSuite) newSession(createdAt time.Time, ttl time.Duration) *models.Session {
	session, err := models.NewSession(id.SessionID(uuid.New()), uuid.NewString(), s.user, ttl, createdAt)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, session))
	return session
}

func (s *PostgresSessionStoreSuite) TestLifecycle() {
	session := s.newSession(s.now, time.Hour)

	found, err := s.store.FindByID(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.Token, found.Token)
	s.True(session.ExpiresAt.Equal(found.ExpiresAt))

	later := s.now.Add(10 * time.Minute)
	s.Require().NoError(s.store.Touch(s.ctx, session.ID, later))
	found, err = s.store.FindByID(s.ctx, session.ID)
	s.Require().NoError(err)
	s.True(later.Equal(found.LastAccessed))

	list, err := s.store.ListByUser(s.ctx, s.user)
	s.Require().NoError(err)
	s.Len(list, 1)

	s.Require().NoError(s.store.Delete(s.ctx, session.ID))
	_, err = s.store.FindByID(s.ctx, session.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSessionStoreSuite) TestDeleteExpired() {
	s.newSession(s.now.Add(-2*time.Hour), time.Hour)
	s.newSession(s.now.Add(-3*time.Hour), time.Hour)
	live := s.newSession(s.now, time.Hour)

	removed, err := s.store.DeleteExpired(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(2, removed)

	_, err = s.store.FindByID(s.ctx, live.ID)
	s.NoError(err)
}
