package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"marketplace/internal/auth"
	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/events"
	"marketplace/internal/handler"
	"marketplace/internal/metrics"
	"marketplace/internal/model"
	"marketplace/internal/pricing"
	"marketplace/internal/repository"
	"marketplace/internal/router"
	"marketplace/internal/service"
	"marketplace/internal/session"
	"marketplace/internal/tariff"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testSecret = "integration-secret"
	testIssuer = "marketplace-test"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, config.DatabaseConfig{
		MaxConnections:  20,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Fixture holds the seeded users and their bearer tokens.
type Fixture struct {
	Admin, Buyer, OtherBuyer, Seller, OtherSeller model.User
	Tokens                                        map[uuid.UUID]string
}

// Token returns the bearer token issued for u.
func (f *Fixture) Token(u model.User) string {
	return f.Tokens[u.ID]
}

// sellerLocation is a few kilometres from the test delivery point.
var sellerLocation = model.Point{Lat: 14.5995, Lng: 120.9842}

// Seed inserts users and products:
//
//	P001 Rice   100.00 stock 10, Seller (located)
//	P002 Oil     25.00 stock  5, OtherSeller (no location)
//	P003 Sugar   60.00 stock  3, Seller
func Seed(t *testing.T, pool *pgxpool.Pool) *Fixture {
	t.Helper()

	ctx := context.Background()
	logger := zerolog.Nop()
	users := repository.NewUserRepository(pool, logger)
	products := repository.NewProductRepository(pool, logger)
	authn := auth.NewAuthenticator(testSecret, testIssuer)

	f := &Fixture{Tokens: make(map[uuid.UUID]string)}
	mk := func(name string, role model.Role, loc *model.Point) model.User {
		u := model.User{ID: uuid.New(), Username: name, Role: role, Location: loc}
		if role == model.RoleBuyer {
			u.PhoneNumber = "0917-000-0000"
			u.DefaultAddress = "1 Ayala Ave, Makati"
		}
		require.NoError(t, users.Create(ctx, &u))
		token, err := authn.Issue(model.Principal{UserID: u.ID, Role: role}, time.Hour)
		require.NoError(t, err)
		f.Tokens[u.ID] = token
		return u
	}
	f.Admin = mk("admin", model.RoleAdmin, nil)
	f.Buyer = mk("buyer", model.RoleBuyer, nil)
	f.OtherBuyer = mk("other-buyer", model.RoleBuyer, nil)
	loc := sellerLocation
	f.Seller = mk("seller", model.RoleSeller, &loc)
	f.OtherSeller = mk("other-seller", model.RoleSeller, nil)

	base := time.Now().Add(-time.Hour)
	for _, p := range []model.Product{
		{ID: "P001", SellerID: f.Seller.ID, Name: "Rice", Price: decimal.RequireFromString("100.00"), Stock: 10, CreatedAt: base},
		{ID: "P002", SellerID: f.OtherSeller.ID, Name: "Oil", Price: decimal.RequireFromString("25.00"), Stock: 5, CreatedAt: base.Add(time.Minute)},
		{ID: "P003", SellerID: f.Seller.ID, Name: "Sugar", Price: decimal.RequireFromString("60.00"), Stock: 3, CreatedAt: base.Add(2 * time.Minute)},
	} {
		p := p
		require.NoError(t, products.Create(ctx, &p))
	}

	return f
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "products", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// testTariff charges 50 per line plus 12 per km from the seller or store.
func testTariff() pricing.DeliveryTariff {
	return pricing.DeliveryTariff{
		BaseFee: decimal.NewFromInt(50),
		PerKm:   decimal.NewFromInt(12),
		Store:   tariff.DefaultStore,
	}
}

// Stack is the wired service layer over a test database.
type Stack struct {
	Products  repository.ProductRepository
	Orders    repository.OrderRepository
	Sessions  session.Store
	Checkout  service.CheckoutService
	Metrics   *metrics.Metrics
	Handler   http.Handler
	Publisher events.Publisher
}

// NewStack wires repositories, services and the router the way the server does.
// numbers overrides order number generation when non-nil.
// StackOption adjusts the checkout wiring built by NewStack.
type StackOption func(*service.CheckoutDeps)

// WithOrderNumberAttempts overrides how many order numbers checkout draws
// before giving up.
func WithOrderNumberAttempts(n int) StackOption {
	return func(d *service.CheckoutDeps) { d.Attempts = n }
}

func NewStack(t *testing.T, pool *pgxpool.Pool, numbers service.OrderNumberFunc, opts ...StackOption) *Stack {
	t.Helper()

	logger := zerolog.Nop()
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	statsRepo := repository.NewStatsRepository(pool, logger)

	sessions := session.NewMemoryStore(time.Hour, logger)
	t.Cleanup(func() { sessions.Close() })

	calculator := pricing.NewCalculator(testTariff())
	publisher := events.NewNoopPublisher()
	m := metrics.New(nil)

	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(productRepo, sessions, calculator, 30*time.Minute, m, logger)
	deps := service.CheckoutDeps{
		Products:     productRepo,
		Orders:       orderRepo,
		Users:        userRepo,
		Sessions:     sessions,
		Calculator:   calculator,
		Publisher:    publisher,
		Observer:     m,
		OrderNumbers: numbers,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	checkoutService := service.NewCheckoutService(deps, logger)
	orderService := service.NewOrderService(orderRepo, publisher, m, logger)
	dashboardService := service.NewDashboardService(productRepo, orderRepo, userRepo, statsRepo, logger)
	profileService := service.NewProfileService(userRepo, logger)

	h := router.New(router.Handlers{
		Products:  handler.NewProductHandler(productService, logger),
		Cart:      handler.NewCartHandler(cartService, logger),
		Checkout:  handler.NewCheckoutHandler(checkoutService, logger),
		Orders:    handler.NewOrderHandler(orderService, logger),
		Dashboard: handler.NewDashboardHandler(dashboardService, logger),
		Profile:   handler.NewProfileHandler(profileService, logger),
	}, router.Options{
		Tokens:     auth.NewAuthenticator(testSecret, testIssuer),
		Requests:   m,
		Metrics:    m.Handler(),
		SessionTTL: time.Hour,
	}, logger)

	return &Stack{
		Products:  productRepo,
		Orders:    orderRepo,
		Sessions:  sessions,
		Checkout:  checkoutService,
		Metrics:   m,
		Handler:   h,
		Publisher: publisher,
	}
}
