package pricing

import (
	"marketplace/internal/model"

	"github.com/shopspring/decimal"
)

// Calculator prices sources against a delivery tariff.
type Calculator struct {
	tariff DeliveryTariff
}

// NewCalculator creates a calculator for the given tariff.
func NewCalculator(tariff DeliveryTariff) *Calculator {
	return &Calculator{tariff: tariff}
}

// Tariff returns the tariff the calculator prices with.
func (c *Calculator) Tariff() DeliveryTariff {
	return c.tariff
}

// Quote prices every line of source for principal. products must hold the
// catalogue entries referenced by the source; lines whose product is missing
// or whose quantity is not positive are left out and reported in Dropped.
// dest is the buyer's delivery point, or nil when unknown.
func (c *Calculator) Quote(principal model.Principal, source Source, products map[string]*model.Product, dest *model.Point) model.Quote {
	quote := model.Quote{
		Source:      source.Name(),
		Lines:       []model.QuoteLine{},
		Subtotal:    decimal.Zero,
		DeliveryFee: decimal.Zero,
	}

	for _, req := range source.Lines() {
		product, ok := products[req.ProductID]
		if !ok || product == nil || req.Quantity <= 0 {
			quote.Dropped = append(quote.Dropped, req.ProductID)
			continue
		}

		line := PriceLine(product.Price, Discount(principal, product, req.Quantity), req.Quantity)
		origin := ResolveOrigin(product, c.tariff.Store)
		fee, km := c.tariff.Fee(origin, dest)

		quote.Lines = append(quote.Lines, model.QuoteLine{
			ProductID:      product.ID,
			ProductName:    product.Name,
			SellerID:       product.SellerID.String(),
			Quantity:       req.Quantity,
			UnitPrice:      line.UnitPrice,
			Discount:       line.Discount,
			EffectivePrice: line.EffectivePrice,
			Subtotal:       line.Subtotal,
			Origin:         origin.Kind(),
			DistanceKm:     km,
			DeliveryFee:    fee,
		})
		quote.Subtotal = quote.Subtotal.Add(line.Subtotal)
		quote.DeliveryFee = quote.DeliveryFee.Add(fee)
	}

	quote.Total = quote.Subtotal.Add(quote.DeliveryFee)
	return quote
}
