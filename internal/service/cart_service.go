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

// cartService implements CartService.
type cartService struct {
	q         *quoter
	buyNowTTL time.Duration
	logger    zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	productRepo repository.ProductRepository,
	sessions session.Store,
	calculator *pricing.Calculator,
	buyNowTTL time.Duration,
	observer Observer,
	logger zerolog.Logger,
) CartService {
	logger = logger.With().Str("service", "cart").Logger()
	return &cartService{
		q: &quoter{
			productRepo: productRepo,
			sessions:    sessions,
			calculator:  calculator,
			observer:    observerOrNop(observer),
			now:         time.Now,
			logger:      logger,
		},
		buyNowTTL: buyNowTTL,
		logger:    logger,
	}
}

// View prices the session cart without delivery coordinates.
func (s *cartService) View(ctx context.Context, principal model.Principal, sessionID string) (*model.Quote, error) {
	cart, err := s.q.sessions.GetCart(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	quote, _, err := s.q.price(ctx, principal, pricing.FromCart{Cart: cart}, nil)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// AddItem adds quantity to the product's cart line.
func (s *cartService) AddItem(ctx context.Context, principal model.Principal, sessionID string, req *model.LineRequest) (*model.Quote, error) {
	if err := s.validateLine(ctx, req); err != nil {
		return nil, err
	}

	cart, err := s.q.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	entry := cart[req.ProductID]
	if entry.Quantity > model.MaxLineQuantity-req.Quantity {
		return nil, model.ErrQuantityTooLarge
	}
	entry.Quantity += req.Quantity
	cart[req.ProductID] = entry

	if err := s.q.sessions.SaveCart(ctx, sessionID, cart); err != nil {
		s.logger.Error().Err(err).Msg("failed to save cart")
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	s.logger.Debug().
		Str("product_id", req.ProductID).
		Int("quantity", entry.Quantity).
		Msg("cart line added")

	return s.View(ctx, principal, sessionID)
}

// SetQuantity replaces the product's cart quantity.
func (s *cartService) SetQuantity(ctx context.Context, principal model.Principal, sessionID, productID string, quantity int) (*model.Quote, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, principal, sessionID, productID)
	}
	if quantity > model.MaxLineQuantity {
		return nil, model.ErrQuantityTooLarge
	}

	cart, err := s.q.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if _, ok := cart[productID]; !ok {
		if err := s.validateLine(ctx, &model.LineRequest{ProductID: productID, Quantity: quantity}); err != nil {
			return nil, err
		}
	}

	cart[productID] = model.CartEntry{Quantity: quantity}
	if err := s.q.sessions.SaveCart(ctx, sessionID, cart); err != nil {
		s.logger.Error().Err(err).Msg("failed to save cart")
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	return s.View(ctx, principal, sessionID)
}

// RemoveItem drops the product's cart line. Removing an absent line is not an error.
func (s *cartService) RemoveItem(ctx context.Context, principal model.Principal, sessionID, productID string) (*model.Quote, error) {
	cart, err := s.q.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if _, ok := cart[productID]; ok {
		delete(cart, productID)
		if err := s.q.sessions.SaveCart(ctx, sessionID, cart); err != nil {
			s.logger.Error().Err(err).Msg("failed to save cart")
			return nil, fmt.Errorf("failed to save cart: %w", err)
		}
	}

	return s.View(ctx, principal, sessionID)
}

// BuyNow stores a single-line payload and returns its quote.
func (s *cartService) BuyNow(ctx context.Context, principal model.Principal, sessionID string, req *model.LineRequest) (*model.Quote, error) {
	if err := s.validateLine(ctx, req); err != nil {
		return nil, err
	}

	payload := &model.BuyNow{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		ExpiresAt: s.q.now().Add(s.buyNowTTL),
	}
	if err := s.q.sessions.SetBuyNow(ctx, sessionID, payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to store buy now payload")
		return nil, fmt.Errorf("failed to store buy now: %w", err)
	}

	s.logger.Debug().
		Str("product_id", req.ProductID).
		Int("quantity", req.Quantity).
		Time("expires_at", payload.ExpiresAt).
		Msg("buy now payload stored")

	quote, _, err := s.q.price(ctx, principal, pricing.FromBuyNow{Payload: *payload}, nil)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// validateLine checks the request names an existing product with a quantity
// between 1 and model.MaxLineQuantity.
func (s *cartService) validateLine(ctx context.Context, req *model.LineRequest) error {
	if req == nil || req.ProductID == "" {
		return model.MissingField("productId")
	}
	if req.Quantity <= 0 {
		return model.ErrInvalidQuantity
	}
	if req.Quantity > model.MaxLineQuantity {
		return model.ErrQuantityTooLarge
	}

	product, err := s.q.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", req.ProductID).Msg("failed to look up product")
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}
	return nil
}
