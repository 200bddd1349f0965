package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of a single cart, buy-now or order line.
const MaxLineQuantity = 9999

// CartEntry is the stored value for one product in a session cart.
type CartEntry struct {
	Quantity int `json:"quantity"`
}

// Cart maps product identifiers to their requested quantity.
type Cart map[string]CartEntry

// BuyNow is a one-shot single line checkout payload.
type BuyNow struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the payload can no longer be used.
func (b *BuyNow) Expired(now time.Time) bool {
	return !b.ExpiresAt.IsZero() && !now.Before(b.ExpiresAt)
}

// LineRequest represents a single product and quantity to price or order.
type LineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// QuantityRequest is the payload for setting a cart line quantity.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// QuoteLine is a priced line as shown in the cart and at checkout.
type QuoteLine struct {
	ProductID      string          `json:"productId"`
	ProductName    string          `json:"productName"`
	SellerID       string          `json:"sellerId"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Discount       decimal.Decimal `json:"discount"`
	EffectivePrice decimal.Decimal `json:"effectivePrice"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Origin         string          `json:"origin"`
	DistanceKm     *float64        `json:"distanceKm,omitempty"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
}

// Quote is a priced collection of lines.
type Quote struct {
	Source      string          `json:"source"`
	Lines       []QuoteLine     `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
	Dropped     []string        `json:"dropped,omitempty"`
}
