package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"coinquest/internal/systemlog/models"
	id "coinquest/pkg/domain"
)

type recordingProducer struct {
	records []*kgo.Record
	err     error
}

func (p *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func newEntry(t *testing.T) *models.Entry {
	t.Helper()
	e, err := models.NewEntry(id.SystemLogID(uuid.New()), models.Event{
		Level:     models.LevelWarning,
		Component: "auth",
		Message:   "login failed",
	}, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return e
}

func TestPublishWritesKeyedRecord(t *testing.T) {
	producer := &recordingProducer{}
	entry := newEntry(t)

	err := NewKafka(producer, "logs").Publish(context.Background(), entry)
	require.NoError(t, err)
	require.Len(t, producer.records, 1)

	record := producer.records[0]
	assert.Equal(t, "logs", record.Topic)
	assert.Equal(t, entry.ID.String(), string(record.Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(record.Value, &decoded))
	assert.Equal(t, "login failed", decoded["message"])
	assert.Equal(t, "warning", decoded["level"])
	assert.Equal(t, "auth", decoded["component"])
}

func TestPublishReturnsProduceError(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker down")}
	err := NewKafka(producer, "").Publish(context.Background(), newEntry(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
