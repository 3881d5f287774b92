//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "coinquest/pkg/domain"
	"coinquest/pkg/testutil/containers"
)

func TestPostgresStoreSuite(t *testing.T) {
	pg := containers.GetManager().Postgres(t)
	ctx := context.Background()

	suite.Run(t, &StoreSuite{
		newStore: func() ledgerStore {
			require.NoError(t, pg.Truncate(ctx))
			return NewPostgres(pg.DB)
		},
		newOwner: func() id.UserID {
			u := uuid.New()
			_, err := pg.DB.ExecContext(ctx,
				`INSERT INTO users (id, email, username, hashed_password) VALUES ($1, $2, $3, 'x')`,
				u, u.String()+"@example.com", u.String())
			require.NoError(t, err)
			return id.UserID(u)
		},
	})
}
