package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/events"
	"marketplace/internal/model"
	"marketplace/internal/pricing"
	"marketplace/internal/repository"
	"marketplace/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutDeps are the collaborators of the checkout service.
type CheckoutDeps struct {
	Products   repository.ProductRepository
	Orders     repository.OrderRepository
	Users      repository.UserRepository
	Sessions   session.Store
	Calculator *pricing.Calculator
	Publisher  events.Publisher
	Observer   Observer

	// OrderNumbers draws candidate order numbers; NewOrderNumber when nil.
	OrderNumbers OrderNumberFunc
	// Attempts bounds order number draws; DefaultOrderNumberAttempts when zero.
	Attempts int
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	q            *quoter
	orderRepo    repository.OrderRepository
	userRepo     repository.UserRepository
	publisher    events.Publisher
	observer     Observer
	orderNumbers OrderNumberFunc
	attempts     int
	logger       zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(deps CheckoutDeps, logger zerolog.Logger) CheckoutService {
	logger = logger.With().Str("service", "checkout").Logger()
	observer := observerOrNop(deps.Observer)

	s := &checkoutService{
		q: &quoter{
			productRepo: deps.Products,
			sessions:    deps.Sessions,
			calculator:  deps.Calculator,
			observer:    observer,
			now:         time.Now,
			logger:      logger,
		},
		orderRepo:    deps.Orders,
		userRepo:     deps.Users,
		publisher:    deps.Publisher,
		observer:     observer,
		orderNumbers: deps.OrderNumbers,
		attempts:     deps.Attempts,
		logger:       logger,
	}
	if s.publisher == nil {
		s.publisher = events.NewNoopPublisher()
	}
	if s.orderNumbers == nil {
		s.orderNumbers = NewOrderNumber
	}
	if s.attempts <= 0 {
		s.attempts = DefaultOrderNumberAttempts
	}
	return s
}

// Preview prices the payload checkout would use.
func (s *checkoutService) Preview(ctx context.Context, principal model.Principal, sessionID string, dest *model.Point) (*model.Quote, error) {
	source, err := s.q.resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	quote, _, err := s.q.price(ctx, principal, source, dest)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Checkout places an order from the session payload.
func (s *checkoutService) Checkout(ctx context.Context, principal model.Principal, sessionID string, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	if !principal.Authenticated() {
		return nil, model.ErrUnauthorised
	}
	if req == nil {
		req = &model.CheckoutRequest{}
	}

	source, err := s.q.resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	dest := pricing.ParsePoint(string(req.DeliveryLat), string(req.DeliveryLng))
	quote, _, err := s.q.price(ctx, principal, source, dest)
	if err != nil {
		return nil, err
	}
	if len(quote.Lines) == 0 {
		s.logger.Warn().Str("source", quote.Source).Msg("nothing left to order after pricing")
		return nil, model.ErrEmptyCart
	}

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", principal.UserID.String()).Msg("failed to load buyer profile")
		return nil, fmt.Errorf("failed to load buyer: %w", err)
	}

	address := strings.TrimSpace(req.Address)
	phone := strings.TrimSpace(req.Phone)
	if user != nil {
		if address == "" {
			address = user.DefaultAddress
		}
		if phone == "" {
			phone = user.PhoneNumber
		}
	}
	if address == "" {
		return nil, model.MissingField("address")
	}
	if phone == "" {
		return nil, model.MissingField("phone")
	}

	now := s.q.now().UTC()
	order := &model.Order{
		ID:              uuid.New(),
		Status:          model.OrderStatusPending,
		BuyerID:         principal.UserID,
		DeliveryAddress: address,
		Phone:           phone,
		DeliveryPoint:   dest,
		DeliveryFee:     quote.DeliveryFee,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	items, err := s.place(ctx, order, quote.Lines)
	if err != nil {
		return nil, err
	}

	s.afterCheckout(ctx, principal, sessionID, source, user, address, phone)

	resp := &model.OrderResponse{
		Order:  *order,
		Items:  items,
		Totals: model.ComputeTotals(items),
	}

	s.observer.OrderCreated()
	if err := s.publisher.OrderCreated(ctx, resp); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to publish order created")
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("source", quote.Source).
		Int("item_count", len(items)).
		Str("total", resp.Totals.Total.StringFixed(2)).
		Msg("order created successfully")

	return resp, nil
}

// place writes the order, reserves stock and stores the lines in one transaction.
func (s *checkoutService) place(ctx context.Context, order *model.Order, lines []model.QuoteLine) ([]model.OrderItem, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	inserted := false
	for attempt := 1; attempt <= s.attempts; attempt++ {
		number, err := s.orderNumbers()
		if err != nil {
			return nil, err
		}
		order.OrderNumber = number

		inserted, err = s.orderRepo.CreateOrder(ctx, tx, order)
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if inserted {
			break
		}

		s.observer.OrderNumberCollision()
		s.logger.Warn().
			Str("order_number", number).
			Int("attempt", attempt).
			Msg("order number collision")
	}
	if !inserted {
		s.logger.Error().Int("attempts", s.attempts).Msg("order number space exhausted")
		return nil, model.ErrOrderNumberExhausted
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		ok, err := s.orderRepo.ReserveStock(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		if !ok {
			s.logger.Warn().
				Str("product_id", line.ProductID).
				Int("quantity", line.Quantity).
				Msg("insufficient stock")
			return nil, model.NewDomainError(model.ErrCodeInsufficientStock,
				fmt.Sprintf("Not enough stock for %s", line.ProductName))
		}

		productID := line.ProductID
		items = append(items, model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   &productID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.EffectivePrice,
			DeliveryFee: line.DeliveryFee,
		})
	}

	if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	fee, err := s.orderRepo.RefreshDeliveryFee(ctx, tx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	order.DeliveryFee = fee

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	committed = true

	return items, nil
}

// afterCheckout consumes the session payload and refreshes the buyer's
// contact defaults. Failures are logged only; the order already exists.
func (s *checkoutService) afterCheckout(ctx context.Context, principal model.Principal, sessionID string, source pricing.Source, user *model.User, address, phone string) {
	var err error
	switch source.(type) {
	case pricing.FromBuyNow:
		err = s.q.sessions.ClearBuyNow(ctx, sessionID)
	case pricing.FromCart:
		err = s.q.sessions.ClearCart(ctx, sessionID)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("source", source.Name()).Msg("failed to clear session payload")
	}

	if user == nil || (user.PhoneNumber == phone && user.DefaultAddress == address) {
		return
	}
	if err := s.userRepo.UpdateContact(ctx, principal.UserID, phone, address); err != nil {
		s.logger.Warn().Err(err).Str("user_id", principal.UserID.String()).Msg("failed to update buyer contact")
	}
}
