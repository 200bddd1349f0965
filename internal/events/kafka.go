package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes order events to a Kafka topic keyed by order ID.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	now    func() time.Time
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaPublisher(writer, topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		now:    time.Now,
		logger: logger.With().Str("component", "kafka_publisher").Str("topic", topic).Logger(),
	}
}

// OrderCreated publishes the created order with its lines and totals.
func (p *KafkaPublisher) OrderCreated(ctx context.Context, order *model.OrderResponse) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}
	return p.publish(ctx, p.envelope(EventTypeOrderCreated, &order.Order, data))
}

// OrderStatusChanged publishes a status transition.
func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, order *model.Order, previous model.OrderStatus) error {
	data, err := json.Marshal(StatusChange{PreviousStatus: previous, NewStatus: order.Status})
	if err != nil {
		return fmt.Errorf("failed to encode status change: %w", err)
	}
	return p.publish(ctx, p.envelope(EventTypeOrderStatusChanged, order, data))
}

func (p *KafkaPublisher) envelope(t EventType, order *model.Order, data []byte) *OrderEvent {
	return &OrderEvent{
		ID:          uuid.NewString(),
		Type:        t,
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		BuyerID:     order.BuyerID.String(),
		Data:        data,
		Timestamp:   p.now().UTC(),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Str("order_id", event.OrderID).
			Msg("failed to publish event")
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Str("order_id", event.OrderID).
		Msg("event published")

	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info().Msg("closing kafka publisher")
	return p.writer.Close()
}
