// Package kafka publishes audit events as JSON records keyed by the
// aggregate they describe, so events of one document stay ordered.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"demandas/internal/platform/kafka"
	audit "demandas/pkg/platform/audit"
)

// Producer is the subset of the Kafka client the publisher needs.
type Producer interface {
	Produce(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher implements audit.Publisher.
type Publisher struct {
	producer Producer
	topic    string
}

func New(producer Producer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

func (p *Publisher) Publish(ctx context.Context, events ...audit.Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal audit event %s: %w", e.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Topic: p.topic,
			Key:   []byte(key(e)),
			Value: value,
			Headers: map[string]string{
				"event_type": e.Action,
				"category":   string(e.Category),
			},
		})
	}
	return p.producer.Produce(ctx, msgs...)
}

func key(e audit.Event) string {
	if !e.DocumentID.IsNil() {
		return e.DocumentID.String()
	}
	return e.FormID.String()
}
