package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents an item listed by a seller.
type Product struct {
	ID          string          `json:"id" db:"id"`
	SellerID    uuid.UUID       `json:"sellerId" db:"seller_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Category    string          `json:"category" db:"category"`
	Brand       string          `json:"brand" db:"brand"`
	Unit        string          `json:"unit" db:"unit"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`

	// SellerLocation is joined from the seller's profile; nil when the seller
	// has not registered coordinates.
	SellerLocation *Point `json:"sellerLocation,omitempty" db:"-"`
}

// Available reports whether the product has any stock left.
func (p *Product) Available() bool {
	return p.Stock > 0
}

// ProductInput is the payload for creating or updating a product.
type ProductInput struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// ProductFilter narrows catalogue listings.
type ProductFilter struct {
	Query  string
	Limit  int
	Offset int
}
