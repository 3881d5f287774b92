package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinquest/internal/systemlog/models"
	id "coinquest/pkg/domain"
)

func TestInMemoryStoreListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		e, err := models.NewEntry(id.SystemLogID(uuid.New()), models.Event{Message: "entry"}, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, s.Append(ctx, e))
	}

	all, err := s.List(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, base.Add(4*time.Minute), all[0].Timestamp)
	assert.Equal(t, base, all[4].Timestamp)

	page, err := s.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, base.Add(3*time.Minute), page[0].Timestamp)

	empty, err := s.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
