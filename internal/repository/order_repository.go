package repository

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const orderColumns = `
	o.id, o.order_number, o.status, o.buyer_id, o.delivery_address, o.phone,
	o.delivery_lat, o.delivery_lng, o.delivery_fee, o.created_at, o.updated_at
`

// summaryQuery aggregates line totals per order. Callers append a WHERE clause.
const summaryQuery = `
	SELECT ` + orderColumns + `,
		COUNT(i.id),
		COALESCE(SUM(ROUND(i.unit_price * i.quantity, 2)), 0),
		COALESCE(SUM(i.delivery_fee), 0)
	FROM orders o
	LEFT JOIN order_items i ON i.order_id = o.id
`

const summaryOrder = `
	GROUP BY o.id
	ORDER BY o.created_at DESC, o.id
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) (bool, error) {
	query := `
		INSERT INTO orders (id, order_number, status, buyer_id, delivery_address, phone,
			delivery_lat, delivery_lng, delivery_fee, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (order_number) DO NOTHING
	`

	lat, lng := order.DeliveryPoint.Nullable()
	tag, err := tx.Exec(ctx, query,
		order.ID, order.OrderNumber, order.Status, order.BuyerID, order.DeliveryAddress, order.Phone,
		lat, lng, order.DeliveryFee, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return false, fmt.Errorf("failed to create order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("order_number", order.OrderNumber).
			Msg("order number already taken")
		return false, nil
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return true, nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, delivery_fee)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.DeliveryFee,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_name", items[i].ProductName).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// ReserveStock decrements stock when enough is available.
func (r *orderRepository) ReserveStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (bool, error) {
	query := `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to reserve stock")
		return false, fmt.Errorf("failed to reserve stock: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// RefreshDeliveryFee stores the sum of the order's line fees.
func (r *orderRepository) RefreshDeliveryFee(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (decimal.Decimal, error) {
	query := `
		UPDATE orders
		SET delivery_fee = (
			SELECT COALESCE(SUM(delivery_fee), 0) FROM order_items WHERE order_id = $1
		)
		WHERE id = $1
		RETURNING delivery_fee
	`

	var fee decimal.Decimal
	if err := tx.QueryRow(ctx, query, orderID).Scan(&fee); err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to refresh delivery fee")
		return decimal.Zero, fmt.Errorf("failed to refresh delivery fee: %w", err)
	}

	return fee, nil
}

func scanOrder(row pgx.Row, extra ...any) (model.Order, error) {
	var o model.Order
	var lat, lng *float64
	dest := []any{
		&o.ID, &o.OrderNumber, &o.Status, &o.BuyerID, &o.DeliveryAddress, &o.Phone,
		&lat, &lng, &o.DeliveryFee, &o.CreatedAt, &o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return model.Order{}, err
	}
	o.DeliveryPoint = model.NewPoint(lat, lng)
	return o, nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, orderQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, delivery_fee
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name, id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Msg("failed to query order items")
		return nil, nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.DeliveryFee,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return &order, items, nil
}

func (r *orderRepository) listSummaries(ctx context.Context, where string, arg any) ([]model.OrderSummary, error) {
	rows, err := r.pool.Query(ctx, summaryQuery+where+summaryOrder, arg)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order summaries")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	summaries := []model.OrderSummary{}
	for rows.Next() {
		var s model.OrderSummary
		order, err := scanOrder(rows, &s.ItemCount, &s.Totals.Subtotal, &s.Totals.DeliveryFee)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order summary row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		s.Order = order
		s.Totals.Total = s.Totals.Subtotal.Add(s.Totals.DeliveryFee)
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order summary rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return summaries, nil
}

// ListByBuyer retrieves a buyer's orders newest first.
func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]model.OrderSummary, error) {
	return r.listSummaries(ctx, `WHERE o.buyer_id = $1`, buyerID)
}

// ListBySeller retrieves orders containing the seller's products.
func (r *orderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.OrderSummary, error) {
	where := `
		WHERE EXISTS (
			SELECT 1 FROM order_items si
			JOIN products p ON p.id = si.product_id
			WHERE si.order_id = o.id AND p.seller_id = $1
		)
	`
	return r.listSummaries(ctx, where, sellerID)
}

// SellerHasItems reports whether the order contains any of the seller's products.
func (r *orderRepository) SellerHasItems(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM order_items i
			JOIN products p ON p.id = i.product_id
			WHERE i.order_id = $1 AND p.seller_id = $2
		)
	`

	var ok bool
	if err := r.pool.QueryRow(ctx, query, orderID, sellerID).Scan(&ok); err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("seller_id", sellerID.String()).
			Msg("failed to check seller items")
		return false, fmt.Errorf("failed to check seller items: %w", err)
	}

	return ok, nil
}

// UpdateStatus moves an order from one status to another.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	query := `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("to", string(to)).
			Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
