package service

import (
	"context"
	"fmt"

	"marketplace/internal/events"
	"marketplace/internal/model"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	publisher events.Publisher
	observer  Observer
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	observer Observer,
	logger zerolog.Logger,
) OrderService {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &orderService{
		orderRepo: orderRepo,
		publisher: publisher,
		observer:  observerOrNop(observer),
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// GetByID retrieves an order visible to principal.
func (s *orderService) GetByID(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.OrderResponse, error) {
	if !principal.Authenticated() {
		return nil, model.ErrUnauthorised
	}

	resp, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if resp.BuyerID != principal.UserID {
		if err := s.checkManager(ctx, principal, id); err != nil {
			return nil, err
		}
	}

	return resp, nil
}

// UpdateStatus moves an order to status if the transition is allowed.
func (s *orderService) UpdateStatus(ctx context.Context, principal model.Principal, id uuid.UUID, status string) (*model.OrderResponse, error) {
	next, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	if !principal.Authenticated() {
		return nil, model.ErrUnauthorised
	}

	resp, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkManager(ctx, principal, id); err != nil {
		return nil, err
	}

	previous := resp.Status
	if !previous.CanTransitionTo(next) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(previous)).
			Str("to", string(next)).
			Msg("rejected status transition")
		return nil, model.ErrInvalidTransition
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, id, previous, next)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !ok {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("expected", string(previous)).
			Msg("order status changed concurrently")
		return nil, model.ErrInvalidTransition
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.observer.StatusChanged(string(next))
	if err := s.publisher.OrderStatusChanged(ctx, &updated.Order, previous); err != nil {
		s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("failed to publish status change")
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(previous)).
		Str("to", string(next)).
		Str("user_id", principal.UserID.String()).
		Msg("order status updated")

	return updated, nil
}

// load reads an order and recomputes its totals from the persisted lines.
func (s *orderService) load(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	totals := model.ComputeTotals(items)
	if !order.DeliveryFee.Equal(totals.DeliveryFee) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("stored", order.DeliveryFee.StringFixed(2)).
			Str("computed", totals.DeliveryFee.StringFixed(2)).
			Msg("stored delivery fee drifted from line fees")
	}

	return &model.OrderResponse{Order: *order, Items: items, Totals: totals}, nil
}

// checkManager allows admins and sellers with at least one line in the order.
func (s *orderService) checkManager(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.IsSeller() {
		ok, err := s.orderRepo.SellerHasItems(ctx, id, principal.UserID)
		if err != nil {
			return fmt.Errorf("failed to check order access: %w", err)
		}
		if ok {
			return nil
		}
	}

	s.logger.Warn().
		Str("order_id", id.String()).
		Str("user_id", principal.UserID.String()).
		Msg("order access forbidden")
	return model.ErrForbidden
}
