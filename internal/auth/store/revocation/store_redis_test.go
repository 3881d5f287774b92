//go:build integration

package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinquest/pkg/testutil/containers"
)

func TestRedisTRL(t *testing.T) {
	rc := containers.GetManager().Redis(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))
	trl := NewRedisTRL(rc.Client)

	revoked, err := trl.IsRevoked(ctx, "jti-unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, trl.RevokeToken(ctx, "jti-1", time.Minute))
	revoked, err = trl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := rc.Client.TTL(ctx, revokedTokenKeyPrefix+"jti-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	assert.Error(t, trl.RevokeToken(ctx, "jti-2", 0))
}
