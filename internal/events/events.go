// Package events publishes order lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"time"

	"marketplace/internal/model"
)

// EventType names an order lifecycle event.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
)

// OrderEvent is the envelope written to the orders topic.
type OrderEvent struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	OrderID     string          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	BuyerID     string          `json:"buyerId"`
	Data        json.RawMessage `json:"data"`
	Timestamp   time.Time       `json:"timestamp"`
}

// StatusChange is the payload of an order.status_changed event.
type StatusChange struct {
	PreviousStatus model.OrderStatus `json:"previousStatus"`
	NewStatus      model.OrderStatus `json:"newStatus"`
}

// Publisher emits order events. Publishing failures are returned to the
// caller, which decides whether they matter.
type Publisher interface {
	OrderCreated(ctx context.Context, order *model.OrderResponse) error
	OrderStatusChanged(ctx context.Context, order *model.Order, previous model.OrderStatus) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) OrderCreated(context.Context, *model.OrderResponse) error { return nil }

func (noopPublisher) OrderStatusChanged(context.Context, *model.Order, model.OrderStatus) error {
	return nil
}

func (noopPublisher) Close() error { return nil }
