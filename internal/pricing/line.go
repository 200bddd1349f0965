package pricing

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places money is rounded to.
const MoneyPlaces = 2

// Line is the priced form of one requested product.
type Line struct {
	UnitPrice      decimal.Decimal
	Discount       decimal.Decimal
	EffectivePrice decimal.Decimal
	Quantity       int
	Subtotal       decimal.Decimal
}

// RoundMoney rounds half away from zero to two places. Amounts handled here
// are never negative, so this is round-half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// EffectivePrice applies discount to unitPrice and rounds the result.
func EffectivePrice(unitPrice, discount decimal.Decimal) decimal.Decimal {
	return RoundMoney(unitPrice.Mul(decimal.NewFromInt(1).Sub(discount)))
}

// PriceLine prices quantity units. The effective unit price is rounded first
// and the subtotal is the rounded product of that price and the quantity.
func PriceLine(unitPrice, discount decimal.Decimal, quantity int) Line {
	effective := EffectivePrice(unitPrice, discount)
	return Line{
		UnitPrice:      unitPrice,
		Discount:       discount,
		EffectivePrice: effective,
		Quantity:       quantity,
		Subtotal:       RoundMoney(effective.Mul(decimal.NewFromInt(int64(quantity)))),
	}
}

// BulkTierPrices returns the effective unit prices at the bulk and wholesale
// tiers, as advertised to sellers on their dashboard.
func BulkTierPrices(unitPrice decimal.Decimal) (bulk, wholesale decimal.Decimal) {
	return EffectivePrice(unitPrice, BulkDiscount), EffectivePrice(unitPrice, WholesaleDiscount)
}
