package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"coinquest/internal/systemlog/models"
)

// Producer is the subset of *kgo.Client used for publishing.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher writes system log entries to the client's default topic,
// keyed by entry ID.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

// NewKafka returns a publisher. An empty topic defers to the client's default.
func NewKafka(producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, entry *models.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal system log: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(entry.ID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "level", Value: []byte(entry.Level)},
		},
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish system log %s: %w", entry.ID, err)
	}
	return nil
}
