package service

import (
	"context"

	"marketplace/internal/model"

	"github.com/google/uuid"
)

// ProductService defines catalogue and seller product management operations.
type ProductService interface {
	// List retrieves products newest first with pagination and optional search.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// ListBySeller retrieves a seller's store front.
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error)

	// Create lists a new product for the calling seller.
	Create(ctx context.Context, principal model.Principal, input *model.ProductInput) (*model.Product, error)

	// Update edits a product owned by the caller, or any product for an admin.
	Update(ctx context.Context, principal model.Principal, id string, input *model.ProductInput) (*model.Product, error)

	// Delete removes a product owned by the caller, or any product for an admin.
	Delete(ctx context.Context, principal model.Principal, id string) error
}

// CartService manages the session cart and buy-now payload.
type CartService interface {
	// View prices the session cart without delivery coordinates.
	View(ctx context.Context, principal model.Principal, sessionID string) (*model.Quote, error)

	// AddItem adds quantity to the product's cart line.
	AddItem(ctx context.Context, principal model.Principal, sessionID string, req *model.LineRequest) (*model.Quote, error)

	// SetQuantity replaces the product's cart quantity; zero or less removes it.
	SetQuantity(ctx context.Context, principal model.Principal, sessionID, productID string, quantity int) (*model.Quote, error)

	// RemoveItem drops the product's cart line.
	RemoveItem(ctx context.Context, principal model.Principal, sessionID, productID string) (*model.Quote, error)

	// BuyNow stores a single-line payload that takes precedence over the cart
	// at checkout.
	BuyNow(ctx context.Context, principal model.Principal, sessionID string, req *model.LineRequest) (*model.Quote, error)
}

// CheckoutService prices and places orders from the session payload.
type CheckoutService interface {
	// Preview prices the payload checkout would use.
	Preview(ctx context.Context, principal model.Principal, sessionID string, dest *model.Point) (*model.Quote, error)

	// Checkout places an order from the payload and consumes it.
	Checkout(ctx context.Context, principal model.Principal, sessionID string, req *model.CheckoutRequest) (*model.OrderResponse, error)
}

// OrderService defines operations on placed orders.
type OrderService interface {
	// GetByID retrieves an order visible to principal with totals from its lines.
	GetByID(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.OrderResponse, error)

	// UpdateStatus moves an order forward or cancels it.
	UpdateStatus(ctx context.Context, principal model.Principal, id uuid.UUID, status string) (*model.OrderResponse, error)
}

// DashboardService builds the per-role overview pages.
type DashboardService interface {
	Buyer(ctx context.Context, principal model.Principal) (*model.BuyerDashboard, error)
	Seller(ctx context.Context, principal model.Principal) (*model.SellerDashboard, error)
	Admin(ctx context.Context, principal model.Principal) (*model.AdminDashboard, error)

	// Sidebar never fails; data layer errors yield SidebarUnavailable.
	Sidebar(ctx context.Context, principal model.Principal) model.Sidebar
}

// ProfileService reads and edits the caller's own account.
type ProfileService interface {
	Get(ctx context.Context, principal model.Principal) (*model.User, error)

	// Update replaces phone, address and store location. Unusable coordinates
	// clear the location rather than failing.
	Update(ctx context.Context, principal model.Principal, req *model.ProfileRequest) (*model.User, error)
}

// Observer receives business events for instrumentation.
type Observer interface {
	OrderCreated()
	OrderNumberCollision()
	LinesDropped(n int)
	StatusChanged(status string)
}

type nopObserver struct{}

func (nopObserver) OrderCreated()         {}
func (nopObserver) OrderNumberCollision() {}
func (nopObserver) LinesDropped(int)      {}
func (nopObserver) StatusChanged(string)  {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
