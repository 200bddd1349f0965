package pricing

import (
	"sort"
	"time"

	"marketplace/internal/model"
)

// Source names reported on quotes.
const (
	SourceCart   = "cart"
	SourceBuyNow = "buy_now"
)

// Source is the payload a checkout prices: either FromCart or FromBuyNow.
type Source interface {
	Lines() []model.LineRequest
	Name() string
	isSource()
}

// FromCart prices every line of a session cart.
type FromCart struct {
	Cart model.Cart
}

// FromBuyNow prices a single buy-now line.
type FromBuyNow struct {
	Payload model.BuyNow
}

// Lines returns the cart lines ordered by product id.
func (s FromCart) Lines() []model.LineRequest {
	lines := make([]model.LineRequest, 0, len(s.Cart))
	for id, entry := range s.Cart {
		lines = append(lines, model.LineRequest{ProductID: id, Quantity: entry.Quantity})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

func (FromCart) Name() string { return SourceCart }
func (FromCart) isSource()    {}

func (s FromBuyNow) Lines() []model.LineRequest {
	return []model.LineRequest{{ProductID: s.Payload.ProductID, Quantity: s.Payload.Quantity}}
}

func (FromBuyNow) Name() string { return SourceBuyNow }
func (FromBuyNow) isSource()    {}

// ResolveSource picks what a checkout will price. A live buy-now payload
// takes precedence over the cart; an expired one is ignored. With neither,
// ErrEmptyCart is returned.
func ResolveSource(cart model.Cart, buyNow *model.BuyNow, now time.Time) (Source, error) {
	if buyNow != nil && !buyNow.Expired(now) && buyNow.ProductID != "" {
		return FromBuyNow{Payload: *buyNow}, nil
	}
	if len(cart) > 0 {
		return FromCart{Cart: cart}, nil
	}
	return nil, model.ErrEmptyCart
}
