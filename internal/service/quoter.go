package service

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/model"
	"marketplace/internal/pricing"
	"marketplace/internal/repository"
	"marketplace/internal/session"

	"github.com/rs/zerolog"
)

// quoter loads session payloads and the products they reference, and prices
// them with the calculator.
type quoter struct {
	productRepo repository.ProductRepository
	sessions    session.Store
	calculator  *pricing.Calculator
	observer    Observer
	now         func() time.Time
	logger      zerolog.Logger
}

// resolve picks the payload checkout would use for the session.
func (q *quoter) resolve(ctx context.Context, sessionID string) (pricing.Source, error) {
	cart, err := q.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	buyNow, err := q.sessions.GetBuyNow(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load buy now: %w", err)
	}

	if buyNow != nil && buyNow.Expired(q.now()) {
		q.logger.Debug().Str("product_id", buyNow.ProductID).Msg("ignoring expired buy now payload")
		if err := q.sessions.ClearBuyNow(ctx, sessionID); err != nil {
			q.logger.Warn().Err(err).Msg("failed to clear expired buy now payload")
		}
	}

	return pricing.ResolveSource(cart, buyNow, q.now())
}

// price loads the products referenced by source and prices it for principal.
// The loaded products are returned keyed by ID.
func (q *quoter) price(ctx context.Context, principal model.Principal, source pricing.Source, dest *model.Point) (model.Quote, map[string]*model.Product, error) {
	lines := source.Lines()
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}

	products, err := q.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		q.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to load products for quote")
		return model.Quote{}, nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	quote := q.calculator.Quote(principal, source, byID, dest)
	if len(quote.Dropped) > 0 {
		q.logger.Warn().
			Strs("product_ids", quote.Dropped).
			Str("source", quote.Source).
			Msg("dropping lines for missing products")
		q.observer.LinesDropped(len(quote.Dropped))
	}

	return quote, byID, nil
}
