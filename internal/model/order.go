package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// statusRank orders the non-cancelled states along the fulfilment path.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusShipped:   2,
	OrderStatusDelivered: 3,
}

// ParseOrderStatus validates s against the closed set of statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if status == OrderStatusCancelled {
		return status, nil
	}
	if _, ok := statusRank[status]; ok {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether s may move to next. Statuses only move
// forward along pending, confirmed, shipped, delivered; cancellation is
// allowed from any non-terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Order represents a customer order.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderNumber     string          `json:"orderNumber" db:"order_number"`
	Status          OrderStatus     `json:"status" db:"status"`
	BuyerID         uuid.UUID       `json:"buyerId" db:"buyer_id"`
	DeliveryAddress string          `json:"deliveryAddress" db:"delivery_address"`
	Phone           string          `json:"phone" db:"phone"`
	DeliveryPoint   *Point          `json:"deliveryPoint,omitempty" db:"-"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee" db:"delivery_fee"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a persisted order line. Quantity, UnitPrice and DeliveryFee are
// frozen at checkout.
type OrderItem struct {
	ID          uuid.UUID       `json:"-" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   *string         `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	DeliveryFee decimal.Decimal `json:"deliveryFee" db:"delivery_fee"`
}

// Subtotal returns the line's goods total.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}

// OrderTotals are derived from an order's persisted lines.
type OrderTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

// ComputeTotals recomputes order totals from its lines.
func ComputeTotals(items []OrderItem) OrderTotals {
	subtotal := decimal.Zero
	fees := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal())
		fees = fees.Add(item.DeliveryFee)
	}
	return OrderTotals{
		Subtotal:    subtotal,
		DeliveryFee: fees,
		Total:       subtotal.Add(fees),
	}
}

// CheckoutRequest represents the request payload for checking out.
// DeliveryLat and DeliveryLng are kept raw so malformed values can degrade to
// "no coordinates" instead of failing the request.
type CheckoutRequest struct {
	Address     string        `json:"address"`
	Phone       string        `json:"phone"`
	DeliveryLat RawCoordinate `json:"deliveryLat,omitempty"`
	DeliveryLng RawCoordinate `json:"deliveryLng,omitempty"`
}

// StatusUpdateRequest is the payload for changing an order's status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order
	Items  []OrderItem `json:"items"`
	Totals OrderTotals `json:"totals"`
}
