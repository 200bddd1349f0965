package router

import (
	"net/http"
	"time"

	"marketplace/internal/handler"
	"marketplace/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Products  *handler.ProductHandler
	Cart      *handler.CartHandler
	Checkout  *handler.CheckoutHandler
	Orders    *handler.OrderHandler
	Dashboard *handler.DashboardHandler
	Profile   *handler.ProfileHandler
}

// Options configures the cross-cutting middleware.
type Options struct {
	Tokens     middleware.TokenParser
	Requests   middleware.RequestObserver
	Metrics    http.Handler
	SessionTTL time.Duration
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	route := func(pattern string, fn http.HandlerFunc) {
		var next http.Handler = fn
		if opts.Requests != nil {
			next = middleware.Instrument(pattern, opts.Requests)(next)
		}
		mux.Handle(pattern, next)
	}

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	route("GET /api/products", h.Products.List)
	route("GET /api/products/{id}", h.Products.GetByID)
	route("POST /api/products", h.Products.Create)
	route("PUT /api/products/{id}", h.Products.Update)
	route("DELETE /api/products/{id}", h.Products.Delete)
	route("GET /api/sellers/{id}/products", h.Products.ListBySeller)

	route("GET /api/cart", h.Cart.View)
	route("POST /api/cart/items", h.Cart.AddItem)
	route("PUT /api/cart/items/{productId}", h.Cart.SetQuantity)
	route("DELETE /api/cart/items/{productId}", h.Cart.RemoveItem)
	route("POST /api/buy-now", h.Cart.BuyNow)

	route("GET /api/checkout", h.Checkout.Preview)
	route("POST /api/checkout", h.Checkout.Checkout)

	route("GET /api/orders/{id}", h.Orders.GetByID)
	route("PUT /api/orders/{id}/status", h.Orders.UpdateStatus)

	route("GET /api/dashboard/buyer", h.Dashboard.Buyer)
	route("GET /api/dashboard/seller", h.Dashboard.Seller)
	route("GET /api/dashboard/admin", h.Dashboard.Admin)
	route("GET /api/dashboard/sidebar", h.Dashboard.Sidebar)

	route("GET /api/profile", h.Profile.Get)
	route("PUT /api/profile", h.Profile.Update)

	// Apply middleware in order: Recovery -> Logging -> CORS -> Session -> Authenticate
	var handler http.Handler = mux
	if opts.Tokens != nil {
		handler = middleware.Authenticate(opts.Tokens, logger)(handler)
	}
	handler = middleware.Session(opts.SessionTTL, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
