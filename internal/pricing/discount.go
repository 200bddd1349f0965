package pricing

import (
	"marketplace/internal/model"

	"github.com/shopspring/decimal"
)

// Quantity thresholds for seller bulk pricing.
const (
	BulkQuantity      = 5
	WholesaleQuantity = 10
)

var (
	// BulkDiscount applies from BulkQuantity units.
	BulkDiscount = decimal.RequireFromString("0.05")
	// WholesaleDiscount applies from WholesaleQuantity units.
	WholesaleDiscount = decimal.RequireFromString("0.10")
)

// Discount returns the discount fraction the principal receives when buying
// quantity units of product. Only authenticated sellers buying another
// seller's goods qualify.
func Discount(principal model.Principal, product *model.Product, quantity int) decimal.Decimal {
	if !principal.IsSeller() || product == nil || product.SellerID == principal.UserID {
		return decimal.Zero
	}
	return TierDiscount(quantity)
}

// TierDiscount returns the bulk tier for quantity regardless of who buys.
func TierDiscount(quantity int) decimal.Decimal {
	switch {
	case quantity >= WholesaleQuantity:
		return WholesaleDiscount
	case quantity >= BulkQuantity:
		return BulkDiscount
	default:
		return decimal.Zero
	}
}
