package service

import (
	"context"
	"math"
	"testing"
	"time"

	"marketplace/internal/model"
	"marketplace/internal/pricing"
	"marketplace/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testStore   = model.Point{Lat: 14.599512, Lng: 120.984222}
	flatTariff  = pricing.DeliveryTariff{BaseFee: decimal.NewFromInt(50), PerKm: decimal.Zero, Store: testStore}
	sellerAlice = uuid.MustParse("11111111-1111-1111-1111-111111111111")
)

func testProduct(id string, price string) model.Product {
	return model.Product{
		ID:       id,
		SellerID: sellerAlice,
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		Stock:    100,
	}
}

func newTestCartService(repo *MockProductRepository, store session.Store, observer Observer) *cartService {
	return NewCartService(repo, store, pricing.NewCalculator(flatTariff), 30*time.Minute, observer, zerolog.Nop()).(*cartService)
}

func TestCartService_AddItemAccumulates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	store := session.NewMemoryStore(time.Hour, zerolog.Nop())
	service := newTestCartService(repo, store, nil)

	p := testProduct("P001", "100.00")
	repo.On("GetByID", ctx, "P001").Return(&p, nil)
	repo.On("GetByIDs", ctx, []string{"P001"}).Return([]model.Product{p}, nil)

	_, err := service.AddItem(ctx, model.Anonymous, "s1", &model.LineRequest{ProductID: "P001", Quantity: 2})
	require.NoError(t, err)
	quote, err := service.AddItem(ctx, model.Anonymous, "s1", &model.LineRequest{ProductID: "P001", Quantity: 3})
	require.NoError(t, err)

	require.Len(t, quote.Lines, 1)
	assert.Equal(t, 5, quote.Lines[0].Quantity)
	assert.Equal(t, pricing.SourceCart, quote.Source)
	assert.True(t, decimal.RequireFromString("500.00").Equal(quote.Subtotal))
	assert.True(t, decimal.RequireFromString("50.00").Equal(quote.DeliveryFee))
	assert.True(t, decimal.RequireFromString("550.00").Equal(quote.Total))
}

func TestCartService_SellerBulkDiscount(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	store := session.NewMemoryStore(time.Hour, zerolog.Nop())
	service := newTestCartService(repo, store, nil)

	p := testProduct("P001", "19.99")
	repo.On("GetByID", ctx, "P001").Return(&p, nil)
	repo.On("GetByIDs", ctx, []string{"P001"}).Return([]model.Product{p}, nil)

	otherSeller := model.Principal{UserID: uuid.New(), Role: model.RoleSeller}
	quote, err := service.AddItem(ctx, otherSeller, "s1", &model.LineRequest{ProductID: "P001", Quantity: 10})
	require.NoError(t, err)

	line := quote.Lines[0]
	assert.True(t, decimal.RequireFromString("0.10").Equal(line.Discount))
	assert.True(t, decimal.RequireFromString("17.99").Equal(line.EffectivePrice))
	assert.True(t, decimal.RequireFromString("179.90").Equal(line.Subtotal))

	// The product's own seller never gets a discount.
	owner := model.Principal{UserID: sellerAlice, Role: model.RoleSeller}
	quote, err = service.View(ctx, owner, "s1")
	require.NoError(t, err)
	assert.True(t, quote.Lines[0].Discount.IsZero())
}

func TestCartService_AddItemValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		req      *model.LineRequest
		found    bool
		expected error
	}{
		{name: "Missing product", req: &model.LineRequest{Quantity: 1}, expected: model.MissingField("productId")},
		{name: "Zero quantity", req: &model.LineRequest{ProductID: "P001"}, expected: model.ErrInvalidQuantity},
		{name: "Negative quantity", req: &model.LineRequest{ProductID: "P001", Quantity: -2}, expected: model.ErrInvalidQuantity},
		{name: "Quantity over cap", req: &model.LineRequest{ProductID: "P001", Quantity: model.MaxLineQuantity + 1}, expected: model.ErrInvalidQuantity},
		{name: "Overflowing quantity", req: &model.LineRequest{ProductID: "P001", Quantity: math.MaxInt}, expected: model.ErrInvalidQuantity},
		{name: "Unknown product", req: &model.LineRequest{ProductID: "P404", Quantity: 1}, expected: model.ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductRepository)
			repo.On("GetByID", ctx, "P404").Return(nil, nil).Maybe()
			store := session.NewMemoryStore(time.Hour, zerolog.Nop())
			service := newTestCartService(repo, store, nil)

			quote, err := service.AddItem(ctx, model.Anonymous, "s1", tt.req)

			assert.ErrorIs(t, err, tt.expected)
			assert.Nil(t, quote)

			cart, err := store.GetCart(ctx, "s1")
			require.NoError(t, err)
			assert.Empty(t, cart)
		})
	}
}

func TestCartService_QuantityCap(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	store := session.NewMemoryStore(time.Hour, zerolog.Nop())
	service := newTestCartService(repo, store, nil)

	p1 := testProduct("P001", "10.00")
	repo.On("GetByID", ctx, "P001").Return(&p1, nil)
	require.NoError(t, store.SaveCart(ctx, "s1", model.Cart{"P001": {Quantity: model.MaxLineQuantity - 1}}))

	quote, err := service.AddItem(ctx, model.Anonymous, "s1", &model.LineRequest{ProductID: "P001", Quantity: 2})
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	assert.Nil(t, quote)

	quote, err = service.SetQuantity(ctx, model.Anonymous, "s1", "P001", model.MaxLineQuantity+1)
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	assert.Nil(t, quote)

	quote, err = service.BuyNow(ctx, model.Anonymous, "s1", &model.LineRequest{ProductID: "P001", Quantity: model.MaxLineQuantity + 1})
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	assert.Nil(t, quote)

	cart, err := store.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.MaxLineQuantity-1, cart["P001"].Quantity)

	buyNow, err := store.GetBuyNow(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, buyNow)
}

func TestCartService_SetQuantityAndRemove(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	store := session.NewMemoryStore(time.Hour, zerolog.Nop())
	service := newTestCartService(repo, store, nil)

	p1 := testProduct("P001", "10.00")
	p2 := testProduct("P002", "20.00")
	require.NoError(t, store.SaveCart(ctx, "s1", model.Cart{"P001": {Quantity: 1}, "P002": {Quantity: 1}}))
	repo.On("GetByIDs", ctx, []string{"P001", "P002"}).Return([]model.Product{p1, p2}, nil)
	repo.On("GetByIDs", ctx, []string{"P002"}).Return([]model.Product{p2}, nil)
	repo.On("GetByIDs", ctx, []string{}).Return([]model.Product{}, nil)

	quote, err := service.SetQuantity(ctx, model.Anonymous, "s1", "P001", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, quote.Lines[0].Quantity)

	quote, err = service.SetQuantity(ctx, model.Anonymous, "s1", "P001", 0)
	require.NoError(t, err)
	require.Len(t, quote.Lines, 1)
	assert.Equal(t, "P002", quote.Lines[0].ProductID)

	quote, err = service.RemoveItem(ctx, model.Anonymous, "s1", "P002")
	require.NoError(t, err)
	assert.Empty(t, quote.Lines)
	assert.True(t, quote.Total.IsZero())
}

func TestCartService_ViewDropsMissingProducts(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	store := session.NewMemoryStore(time.Hour, zerolog.Nop())
	observer := &countingObserver{}
	service := newTestCartService(repo, store, observer)

	p1 := testProduct("P001", "10.00")
	require.NoError(t, store.SaveCart(ctx, "s1", model.Cart{"P001": {Quantity: 1}, "GONE": {Quantity: 2}}))
	repo.On("GetByIDs", ctx, []string{"GONE", "P001"}).Return([]model.Product{p1}, nil)

	quote, err := service.View(ctx, model.Anonymous, "s1")

	require.NoError(t, err)
	require.Len(t, quote.Lines, 1)
	assert.Equal(t, []string{"GONE"}, quote.Dropped)
	assert.Equal(t, 1, observer.dropped)
}

func TestCartService_BuyNow(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	store := session.NewMemoryStore(time.Hour, zerolog.Nop())
	service := newTestCartService(repo, store, nil)

	p := testProduct("P009", "75.25")
	repo.On("GetByID", ctx, "P009").Return(&p, nil)
	repo.On("GetByIDs", ctx, []string{"P009"}).Return([]model.Product{p}, nil)

	quote, err := service.BuyNow(ctx, model.Anonymous, "s1", &model.LineRequest{ProductID: "P009", Quantity: 2})

	require.NoError(t, err)
	assert.Equal(t, pricing.SourceBuyNow, quote.Source)
	assert.True(t, decimal.RequireFromString("150.50").Equal(quote.Subtotal))

	payload, err := store.GetBuyNow(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, 2, payload.Quantity)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), payload.ExpiresAt, time.Minute)

	// The cart is left alone.
	cart, err := store.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, cart)
	repo.AssertNotCalled(t, "GetByIDs", mock.Anything, []string{})
}
