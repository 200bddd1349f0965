// Package session stores per-visitor cart and buy-now payloads keyed by an
// opaque session identifier.
package session

import (
	"context"

	"marketplace/internal/model"

	"github.com/google/uuid"
)

// Store persists session payloads. A missing cart reads as an empty cart and a
// missing buy-now payload reads as nil.
type Store interface {
	GetCart(ctx context.Context, sessionID string) (model.Cart, error)
	SaveCart(ctx context.Context, sessionID string, cart model.Cart) error
	ClearCart(ctx context.Context, sessionID string) error

	GetBuyNow(ctx context.Context, sessionID string) (*model.BuyNow, error)
	SetBuyNow(ctx context.Context, sessionID string, payload *model.BuyNow) error
	ClearBuyNow(ctx context.Context, sessionID string) error

	Close() error
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an identifier issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
