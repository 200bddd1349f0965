package pricing

import (
	"testing"
	"time"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSource(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	cart := model.Cart{"P001": {Quantity: 2}}
	live := &model.BuyNow{ProductID: "P009", Quantity: 1, ExpiresAt: now.Add(time.Minute)}
	expired := &model.BuyNow{ProductID: "P009", Quantity: 1, ExpiresAt: now.Add(-time.Minute)}

	tests := []struct {
		name        string
		cart        model.Cart
		buyNow      *model.BuyNow
		expected    Source
		expectedErr error
	}{
		{name: "Buy now wins over cart", cart: cart, buyNow: live, expected: FromBuyNow{Payload: *live}},
		{name: "Buy now alone", cart: nil, buyNow: live, expected: FromBuyNow{Payload: *live}},
		{name: "Cart alone", cart: cart, buyNow: nil, expected: FromCart{Cart: cart}},
		{name: "Expired buy now falls back to cart", cart: cart, buyNow: expired, expected: FromCart{Cart: cart}},
		{name: "Nothing to check out", cart: model.Cart{}, buyNow: nil, expectedErr: model.ErrEmptyCart},
		{name: "Only an expired buy now", cart: nil, buyNow: expired, expectedErr: model.ErrEmptyCart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ResolveSource(tt.cart, tt.buyNow, now)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, src)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, src)
		})
	}
}

func TestFromCart_LinesAreSorted(t *testing.T) {
	src := FromCart{Cart: model.Cart{"P003": {Quantity: 1}, "P001": {Quantity: 4}, "P002": {Quantity: 2}}}

	lines := src.Lines()

	require.Len(t, lines, 3)
	assert.Equal(t, "P001", lines[0].ProductID)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, "P003", lines[2].ProductID)
}

func TestCalculator_Quote(t *testing.T) {
	sellerA := uuid.New()
	sellerB := uuid.New()
	sellerALocation := model.Point{Lat: 14.5995, Lng: 120.9842}

	products := map[string]*model.Product{
		"P001": {ID: "P001", Name: "Rice 25kg", SellerID: sellerA, Price: d("1250.00"), SellerLocation: &sellerALocation},
		"P002": {ID: "P002", Name: "Cooking Oil", SellerID: sellerB, Price: d("89.75")},
	}
	calc := NewCalculator(metroTariff())
	buyer := model.Principal{UserID: sellerB, Role: model.RoleSeller}
	source := FromCart{Cart: model.Cart{
		"P001":    {Quantity: 10},
		"P002":    {Quantity: 6},
		"MISSING": {Quantity: 1},
	}}
	dest := model.Point{Lat: 14.6091, Lng: 121.0223}

	quote := calc.Quote(buyer, source, products, &dest)

	assert.Equal(t, SourceCart, quote.Source)
	assert.Equal(t, []string{"MISSING"}, quote.Dropped)
	require.Len(t, quote.Lines, 2)

	rice := quote.Lines[0]
	assert.Equal(t, "P001", rice.ProductID)
	assert.Equal(t, "1125.00", rice.EffectivePrice.StringFixed(2))
	assert.Equal(t, "11250.00", rice.Subtotal.StringFixed(2))
	assert.Equal(t, OriginSeller, rice.Origin)
	require.NotNil(t, rice.DistanceKm)
	assert.InDelta(t, 4.24, *rice.DistanceKm, 0.01)

	// own product: no discount, ships from the store fallback
	oil := quote.Lines[1]
	assert.True(t, oil.Discount.IsZero())
	assert.Equal(t, "538.50", oil.Subtotal.StringFixed(2))
	assert.Equal(t, OriginStore, oil.Origin)

	assert.True(t, rice.Subtotal.Add(oil.Subtotal).Equal(quote.Subtotal))
	assert.True(t, rice.DeliveryFee.Add(oil.DeliveryFee).Equal(quote.DeliveryFee))
	assert.True(t, quote.Subtotal.Add(quote.DeliveryFee).Equal(quote.Total))
}

func TestCalculator_Quote_NoDestinationChargesBaseFeePerLine(t *testing.T) {
	seller := model.Point{Lat: 7.0731, Lng: 125.6128}
	products := map[string]*model.Product{
		"P001": {ID: "P001", SellerID: uuid.New(), Price: d("10"), SellerLocation: &seller},
		"P002": {ID: "P002", SellerID: uuid.New(), Price: d("20")},
		"P003": {ID: "P003", SellerID: uuid.New(), Price: d("30")},
	}
	calc := NewCalculator(metroTariff())
	source := FromCart{Cart: model.Cart{"P001": {Quantity: 1}, "P002": {Quantity: 1}, "P003": {Quantity: 1}}}

	quote := calc.Quote(model.Anonymous, source, products, nil)

	require.Len(t, quote.Lines, 3)
	for _, line := range quote.Lines {
		assert.True(t, d("50").Equal(line.DeliveryFee))
		assert.Nil(t, line.DistanceKm)
	}
	assert.Equal(t, "150.00", quote.DeliveryFee.StringFixed(2))
	assert.Equal(t, "210.00", quote.Total.StringFixed(2))
}

func TestCalculator_Quote_BuyNowDropsNonPositiveQuantity(t *testing.T) {
	products := map[string]*model.Product{"P001": {ID: "P001", Price: d("10")}}
	calc := NewCalculator(metroTariff())

	quote := calc.Quote(model.Anonymous, FromBuyNow{Payload: model.BuyNow{ProductID: "P001", Quantity: 0}}, products, nil)

	assert.Empty(t, quote.Lines)
	assert.Equal(t, []string{"P001"}, quote.Dropped)
	assert.True(t, quote.Total.Equal(decimal.Zero))
}
