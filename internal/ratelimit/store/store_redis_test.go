//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinquest/pkg/testutil/containers"
)

func TestRedisStoreAllow(t *testing.T) {
	rc := containers.GetManager().Redis(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))
	s := NewRedis(rc.Client)

	for i := 1; i >= 0; i-- {
		res, err := s.Allow(ctx, "auth:10.0.0.1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, i, res.Remaining)
	}

	res, err := s.Allow(ctx, "auth:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.WithinDuration(t, time.Now().Add(time.Minute), res.ResetAt, 2*time.Second)

	ttl, err := rc.Client.TTL(ctx, keyPrefix+"auth:10.0.0.1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, s.Reset(ctx, "auth:10.0.0.1"))
	res, err = s.Allow(ctx, "auth:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
