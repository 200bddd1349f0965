package service

import (
	"context"
	"fmt"

	"marketplace/internal/model"
	"marketplace/internal/pricing"
	"marketplace/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// dashboardService implements DashboardService.
type dashboardService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	statsRepo   repository.StatsRepository
	logger      zerolog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	statsRepo repository.StatsRepository,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		statsRepo:   statsRepo,
		logger:      logger.With().Str("service", "dashboard").Logger(),
	}
}

func countPending(orders []model.OrderSummary) int {
	n := 0
	for _, o := range orders {
		if o.Status == model.OrderStatusPending {
			n++
		}
	}
	return n
}

// Buyer lists the caller's orders.
func (s *dashboardService) Buyer(ctx context.Context, principal model.Principal) (*model.BuyerDashboard, error) {
	if !principal.Authenticated() {
		return nil, model.ErrUnauthorised
	}

	orders, err := s.orderRepo.ListByBuyer(ctx, principal.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", principal.UserID.String()).Msg("failed to list buyer orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &model.BuyerDashboard{Orders: orders, PendingCount: countPending(orders)}, nil
}

// Seller lists the caller's products with bulk prices and the orders that
// contain them.
func (s *dashboardService) Seller(ctx context.Context, principal model.Principal) (*model.SellerDashboard, error) {
	if !principal.Authenticated() {
		return nil, model.ErrUnauthorised
	}
	if !principal.IsSeller() {
		return nil, model.ErrForbidden
	}

	products, err := s.productRepo.ListBySeller(ctx, principal.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("seller_id", principal.UserID.String()).Msg("failed to list seller products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	orders, err := s.orderRepo.ListBySeller(ctx, principal.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("seller_id", principal.UserID.String()).Msg("failed to list seller orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	listed := make([]model.SellerProduct, 0, len(products))
	for _, p := range products {
		bulk, wholesale := pricing.BulkTierPrices(p.Price)
		listed = append(listed, model.SellerProduct{Product: p, BulkPrice: bulk, WholesalePrice: wholesale})
	}

	return &model.SellerDashboard{
		Products:     listed,
		Orders:       orders,
		PendingCount: countPending(orders),
	}, nil
}

// Admin returns marketplace-wide figures.
func (s *dashboardService) Admin(ctx context.Context, principal model.Principal) (*model.AdminDashboard, error) {
	if !principal.Authenticated() {
		return nil, model.ErrUnauthorised
	}
	if !principal.IsAdmin() {
		return nil, model.ErrForbidden
	}

	d, err := s.statsRepo.AdminDashboard(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load admin dashboard")
		return nil, fmt.Errorf("failed to load admin dashboard: %w", err)
	}
	return d, nil
}

// Sidebar returns the caller's quick figures.
func (s *dashboardService) Sidebar(ctx context.Context, principal model.Principal) model.Sidebar {
	if !principal.Authenticated() {
		return model.Sidebar{State: model.SidebarNotApplicable, SalesTotal: decimal.Zero}
	}

	sidebar, err := s.sidebar(ctx, principal)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", principal.UserID.String()).Msg("sidebar unavailable")
		return model.Sidebar{State: model.SidebarUnavailable, SalesTotal: decimal.Zero}
	}
	return sidebar
}

func (s *dashboardService) sidebar(ctx context.Context, principal model.Principal) (model.Sidebar, error) {
	sidebar := model.Sidebar{State: model.SidebarAvailable, SalesTotal: decimal.Zero}

	count, err := s.statsRepo.CountOrdersByBuyer(ctx, principal.UserID)
	if err != nil {
		return model.Sidebar{}, err
	}
	sidebar.OrdersCount = count

	if principal.IsSeller() {
		total, err := s.statsRepo.DeliveredSalesBySeller(ctx, principal.UserID)
		if err != nil {
			return model.Sidebar{}, err
		}
		sidebar.SalesTotal = total.Round(2)
	}

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return model.Sidebar{}, err
	}
	if user != nil {
		sidebar.Phone = user.PhoneNumber
		sidebar.Address = user.DefaultAddress
	}

	return sidebar, nil
}
