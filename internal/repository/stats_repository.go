package repository

import (
	"context"
	"fmt"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// statsRepository implements the StatsRepository interface using PostgreSQL.
type statsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStatsRepository creates a new PostgreSQL-backed stats repository.
func NewStatsRepository(pool *pgxpool.Pool, logger zerolog.Logger) StatsRepository {
	return &statsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stats").Logger(),
	}
}

// AdminDashboard computes marketplace-wide figures. Sales cover every order
// regardless of status.
func (r *statsRepository) AdminDashboard(ctx context.Context) (*model.AdminDashboard, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM users),
			(SELECT COALESCE(SUM(ROUND(unit_price * quantity, 2) + delivery_fee), 0) FROM order_items),
			(SELECT COUNT(*) FROM orders WHERE status = 'pending')
	`

	var d model.AdminDashboard
	err := r.pool.QueryRow(ctx, query).Scan(
		&d.TotalProducts, &d.TotalOrders, &d.TotalUsers, &d.TotalSales, &d.PendingOrders,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query admin dashboard")
		return nil, fmt.Errorf("failed to query admin dashboard: %w", err)
	}

	return &d, nil
}

// CountOrdersByBuyer counts the orders a user placed.
func (r *statsRepository) CountOrdersByBuyer(ctx context.Context, buyerID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE buyer_id = $1`, buyerID).Scan(&n)
	if err != nil {
		r.logger.Error().Err(err).Str("buyer_id", buyerID.String()).Msg("failed to count buyer orders")
		return 0, fmt.Errorf("failed to count buyer orders: %w", err)
	}
	return n, nil
}

// DeliveredSalesBySeller sums full order totals of delivered orders that
// contain at least one of the seller's products.
func (r *statsRepository) DeliveredSalesBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(ROUND(i.unit_price * i.quantity, 2) + i.delivery_fee), 0)
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.status = 'delivered'
		  AND EXISTS (
			SELECT 1 FROM order_items si
			JOIN products p ON p.id = si.product_id
			WHERE si.order_id = o.id AND p.seller_id = $1
		  )
	`

	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, sellerID).Scan(&total); err != nil {
		r.logger.Error().Err(err).Str("seller_id", sellerID.String()).Msg("failed to sum seller sales")
		return decimal.Zero, fmt.Errorf("failed to sum seller sales: %w", err)
	}
	return total, nil
}
