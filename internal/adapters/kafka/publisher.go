package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"multicurrency/internal/adapters"
	"multicurrency/internal/domain"

	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "currency.rate.changed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes rate change events keyed by currency code, so every
// currency keeps its order within a partition.
type Publisher struct {
	writer messageWriter
	now    func() time.Time
}

func (p *Publisher) PublishRateChanged(ctx context.Context, events ...domain.RateChangedEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	ts := p.now()
	for _, e := range events {
		v, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal rate event for %s: %w", e.Currency, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.Currency),
			Value: v,
			Time:  ts,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write rate events: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		now: time.Now,
	}
}

// Nop drops every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) PublishRateChanged(context.Context, ...domain.RateChangedEvent) error { return nil }
func (Nop) Close() error                                                         { return nil }

var (
	_ adapters.EventPublisher = (*Publisher)(nil)
	_ adapters.EventPublisher = Nop{}
)
