package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// MessageProducer is the part of the kafka producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafkago.Header) error
}

// KafkaPublisher wraps order events in an Envelope keyed by order id, so
// every event of one order lands on the same partition.
type KafkaPublisher struct {
	producer MessageProducer
	service  string
	now      func() time.Time
}

func NewKafkaPublisher(producer MessageProducer, service string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, service: service, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, orderID string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  EventVersion,
		OccurredAt:    p.now().UTC(),
		Producer:      p.service,
		CorrelationID: orderID,
		Payload:       raw,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	return p.producer.Publish(ctx, []byte(orderID), value,
		kafkago.Header{Key: "event_type", Value: []byte(eventType)})
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, interface{}) error { return nil }
