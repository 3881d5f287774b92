package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinquest/pkg/testutil"
)

func TestInMemoryStoreAllow(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewInMemory()
	s.now = func() time.Time { return clock }

	for i := 2; i >= 0; i-- {
		res, err := s.Allow(ctx, "auth:10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, i, res.Remaining)
	}

	res, err := s.Allow(ctx, "auth:10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, clock.Add(time.Minute), res.ResetAt)

	testutil.Given(t, "a different client ip", func(t *testing.T) {
		res, err := s.Allow(ctx, "auth:10.0.0.2", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	testutil.When(t, "the window slides past the first hit", func(t *testing.T) {
		clock = clock.Add(time.Minute + time.Second)
		res, err := s.Allow(ctx, "auth:10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2, res.Remaining)
	})

	testutil.Then(t, "reset clears hits", func(t *testing.T) {
		require.NoError(t, s.Reset(ctx, "auth:10.0.0.1"))
		res, err := s.Allow(ctx, "auth:10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Remaining)
	})
}

func TestResultRetryAfter(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 30, Result{ResetAt: now.Add(30 * time.Second)}.RetryAfter(now))
	assert.Equal(t, 1, Result{ResetAt: now.Add(-time.Second)}.RetryAfter(now))
}
