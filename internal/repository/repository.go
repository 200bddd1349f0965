package repository

import (
	"context"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves products newest first, filtered by an optional search term.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. It returns nil, nil when
	// the product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs. Missing IDs are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// ListBySeller retrieves a seller's products newest first.
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// Update replaces a product's editable fields.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product. Order lines keep their history with a null
	// product reference.
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// GetByID retrieves a user. It returns nil, nil when the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// Create inserts a user.
	Create(ctx context.Context, user *model.User) error

	// UpdateContact stores the user's default phone number and address.
	UpdateContact(ctx context.Context, id uuid.UUID, phone, address string) error

	// UpdateProfile replaces contact details and the store location; a nil
	// location clears it. It reports false when the user does not exist.
	UpdateProfile(ctx context.Context, id uuid.UUID, phone, address string, location *model.Point) (bool, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction. It
	// returns false without error when the order number is already taken.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) (bool, error)

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// ReserveStock decrements a product's stock by quantity if enough is
	// available. It returns false when the stock is insufficient.
	ReserveStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (bool, error)

	// RefreshDeliveryFee recomputes and stores the order's delivery fee from
	// its lines and returns the stored value.
	RefreshDeliveryFee(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (decimal.Decimal, error)

	// GetByID retrieves an order by its ID along with its items. It returns
	// nil when the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// ListByBuyer retrieves a buyer's orders newest first.
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]model.OrderSummary, error)

	// ListBySeller retrieves orders containing the seller's products newest first.
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.OrderSummary, error)

	// SellerHasItems reports whether the order contains any of the seller's products.
	SellerHasItems(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error)

	// UpdateStatus moves an order from one status to another. It returns
	// false when the order is no longer in the from status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error)
}

// StatsRepository defines aggregate queries for dashboards.
type StatsRepository interface {
	// AdminDashboard computes marketplace-wide figures.
	AdminDashboard(ctx context.Context) (*model.AdminDashboard, error)

	// CountOrdersByBuyer counts the orders a user placed.
	CountOrdersByBuyer(ctx context.Context, buyerID uuid.UUID) (int, error)

	// DeliveredSalesBySeller sums the totals of delivered orders that
	// contain the seller's products.
	DeliveredSalesBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)
}
