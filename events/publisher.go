package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/opsdeck/scenario-hub/models"
)

// TransitionEvent is the payload published on every workflow status change
type TransitionEvent struct {
	RequestID  string        `json:"request_id"`
	FromStatus models.Status `json:"from_status"`
	ToStatus   models.Status `json:"to_status"`
	Actor      string        `json:"actor"`
	Comment    string        `json:"comment,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Publisher emits workflow transition events to downstream consumers
// (notification mailers keyed on distribution lists, reporting, etc.)
type Publisher interface {
	PublishTransition(ctx context.Context, event TransitionEvent) error
	Close() error
}

// KafkaPublisher publishes transition events to a kafka topic, partitioned
// by request ID so per-request ordering is preserved
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisher creates a publisher over the given brokers
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		topic = "scenario.request.transitions"
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

// PublishTransition emits one transition event
func (p *KafkaPublisher) PublishTransition(ctx context.Context, event TransitionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal transition event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.RequestID),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events. Used when no brokers are configured.
type NopPublisher struct{}

// NewNopPublisher creates a publisher that discards events
func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

// PublishTransition discards the event
func (p *NopPublisher) PublishTransition(context.Context, TransitionEvent) error {
	return nil
}

// Close is a no-op
func (p *NopPublisher) Close() error {
	return nil
}
