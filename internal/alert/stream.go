package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tyee-ai/gpu-thermal/internal/models"
)

// StreamSink produces failure events to a Redpanda/Kafka topic so
// downstream alerting pipelines can consume them.
type StreamSink struct {
	client *kgo.Client
	topic  string
}

// NewStreamSink connects to the given brokers.
func NewStreamSink(brokers []string, topic string) (*StreamSink, error) {
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("connect alert brokers: %w", err)
	}
	return &StreamSink{client: client, topic: topic}, nil
}

// Name implements Sink.
func (s *StreamSink) Name() string { return "stream" }

// Notify produces one JSON-encoded event, keyed by gpu_id so per-GPU
// ordering is preserved within a partition.
func (s *StreamSink) Notify(ctx context.Context, ev models.ThermalEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	rec := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(ev.GPUID),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", s.topic, err)
	}
	return nil
}

// Close flushes and closes the broker client.
func (s *StreamSink) Close() {
	s.client.Close()
}
