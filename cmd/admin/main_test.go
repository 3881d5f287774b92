package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinquest/internal/auth/models"
	userStore "coinquest/internal/auth/store/user"
	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/sentinel"
)

func seed(t *testing.T) *userStore.InMemoryUserStore {
	t.Helper()
	store := userStore.New()
	require.NoError(t, store.Create(context.Background(), &models.User{
		ID:             id.UserID(uuid.New()),
		Email:          "ops@example.com",
		Username:       "ops",
		HashedPassword: "hash",
		IsActive:       true,
		CreatedAt:      time.Now(),
	}))
	return store
}

func TestRunPromotesAndDeactivates(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	var out, errOut bytes.Buffer

	err := run(ctx, []string{"-user", "ops", "-superuser", "true", "-active", "false"}, store, &out, &errOut)
	require.NoError(t, err)

	u, err := store.FindByUsername(ctx, "ops")
	require.NoError(t, err)
	assert.True(t, u.IsSuperuser)
	assert.False(t, u.IsActive)
	assert.Contains(t, out.String(), "superuser=true")
	assert.Contains(t, out.String(), "active=false")
}

func TestRunRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	var out, errOut bytes.Buffer

	assert.Error(t, run(ctx, nil, store, &out, &errOut))
	assert.Error(t, run(ctx, []string{"-user", "ops"}, store, &out, &errOut))
	assert.Error(t, run(ctx, []string{"-user", "ops", "-superuser", "maybe"}, store, &out, &errOut))

	err := run(ctx, []string{"-user", "ghost", "-superuser", "true"}, store, &out, &errOut)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
