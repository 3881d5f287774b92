//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"coinquest/internal/platform/config"
	"coinquest/internal/platform/kafka"
	"coinquest/pkg/testutil/containers"
)

func TestKafkaPublisherRoundTrip(t *testing.T) {
	rp := containers.GetManager().Redpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "coinquest.system-logs.test"
	producer, err := kafka.New(ctx, config.KafkaConfig{Brokers: rp.Brokers, SystemLogTopic: topic})
	require.NoError(t, err)
	require.NotNil(t, producer)
	defer producer.Close()

	entry := newEntry(t)
	require.NoError(t, NewKafka(producer, "").Publish(ctx, entry))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)

	assert.Equal(t, entry.ID.String(), string(records[0].Key))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(records[0].Value, &decoded))
	assert.Equal(t, "login failed", decoded["message"])
}
