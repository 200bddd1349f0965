package repository

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/database"
	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the service schema and
// returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedUser inserts a user and returns it.
func seedUser(t *testing.T, pool *pgxpool.Pool, username string, role model.Role, location *model.Point) model.User {
	u := model.User{ID: uuid.New(), Username: username, Role: role, Location: location}
	require.NoError(t, NewUserRepository(pool, zerolog.Nop()).Create(context.Background(), &u))
	return u
}

// seedProducts inserts test products into the database.
func seedProducts(t *testing.T, pool *pgxpool.Pool, products []model.Product) {
	repo := NewProductRepository(pool, zerolog.Nop())
	for i := range products {
		require.NoError(t, repo.Create(context.Background(), &products[i]))
	}
}

func TestProductRepository_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seller := seedUser(t, pool, "seller", model.RoleSeller, nil)

	base := time.Now().Add(-time.Hour)
	seedProducts(t, pool, []model.Product{
		{ID: "P001", SellerID: seller.ID, Name: "Rice 25kg", Brand: "Harvest", Price: decimal.RequireFromString("1200.00"), Stock: 5, CreatedAt: base},
		{ID: "P002", SellerID: seller.ID, Name: "Cooking Oil", Description: "Coconut oil", Price: decimal.RequireFromString("95.50"), Stock: 5, CreatedAt: base.Add(time.Minute)},
		{ID: "P003", SellerID: seller.ID, Name: "Sugar", Brand: "Sweet Harvest", Price: decimal.RequireFromString("60.00"), Stock: 5, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "P004", SellerID: seller.ID, Name: "Salt", Price: decimal.RequireFromString("15.00"), Stock: 5, CreatedAt: base.Add(3 * time.Minute)},
		{ID: "P005", SellerID: seller.ID, Name: "Vinegar", Price: decimal.RequireFromString("30.00"), Stock: 5, CreatedAt: base.Add(4 * time.Minute)},
	})

	tests := []struct {
		name     string
		filter   model.ProductFilter
		expected []string
	}{
		{
			name:     "All products newest first",
			filter:   model.ProductFilter{Limit: 10},
			expected: []string{"P005", "P004", "P003", "P002", "P001"},
		},
		{
			name:     "First page",
			filter:   model.ProductFilter{Limit: 2},
			expected: []string{"P005", "P004"},
		},
		{
			name:     "Last page",
			filter:   model.ProductFilter{Limit: 2, Offset: 4},
			expected: []string{"P001"},
		},
		{
			name:     "Offset beyond results",
			filter:   model.ProductFilter{Limit: 10, Offset: 10},
			expected: []string{},
		},
		{
			name:     "Search matches brand case-insensitively",
			filter:   model.ProductFilter{Query: "harvest", Limit: 10},
			expected: []string{"P003", "P001"},
		},
		{
			name:     "Search matches description",
			filter:   model.ProductFilter{Query: "coconut", Limit: 10},
			expected: []string{"P002"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.List(context.Background(), tt.filter)

			require.NoError(t, err)
			ids := make([]string, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestProductRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	located := seedUser(t, pool, "located", model.RoleSeller, &model.Point{Lat: 14.5995, Lng: 120.9842})
	unlocated := seedUser(t, pool, "unlocated", model.RoleSeller, nil)

	seedProducts(t, pool, []model.Product{
		{ID: "P001", SellerID: located.ID, Name: "Test Product", Category: "Grocery", Unit: "pcs", Price: decimal.RequireFromString("99.99"), Stock: 3, CreatedAt: time.Now()},
		{ID: "P002", SellerID: unlocated.ID, Name: "Other", Unit: "pcs", Price: decimal.RequireFromString("1.00"), CreatedAt: time.Now()},
	})

	ctx := context.Background()

	t.Run("Product exists with seller location", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "P001")

		require.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, "Test Product", product.Name)
		assert.Equal(t, located.ID, product.SellerID)
		assert.True(t, decimal.RequireFromString("99.99").Equal(product.Price))
		assert.Equal(t, 3, product.Stock)
		require.NotNil(t, product.SellerLocation)
		assert.InDelta(t, 14.5995, product.SellerLocation.Lat, 1e-9)
	})

	t.Run("Seller without coordinates", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "P002")

		require.NoError(t, err)
		require.NotNil(t, product)
		assert.Nil(t, product.SellerLocation)
		assert.False(t, product.Available())
	})

	t.Run("Product does not exist", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "P999")

		require.NoError(t, err)
		assert.Nil(t, product)
	})
}

func TestProductRepository_GetByIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seller := seedUser(t, pool, "seller", model.RoleSeller, nil)

	now := time.Now()
	seedProducts(t, pool, []model.Product{
		{ID: "P001", SellerID: seller.ID, Name: "Product A", Price: decimal.NewFromInt(10), CreatedAt: now},
		{ID: "P002", SellerID: seller.ID, Name: "Product B", Price: decimal.NewFromInt(20), CreatedAt: now},
		{ID: "P003", SellerID: seller.ID, Name: "Product C", Price: decimal.NewFromInt(30), CreatedAt: now},
	})

	tests := []struct {
		name     string
		ids      []string
		expected int
	}{
		{name: "Get multiple products", ids: []string{"P001", "P002", "P003"}, expected: 3},
		{name: "Some products do not exist", ids: []string{"P001", "P999"}, expected: 1},
		{name: "No products exist", ids: []string{"P998", "P999"}, expected: 0},
		{name: "Empty ID list", ids: []string{}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.GetByIDs(context.Background(), tt.ids)

			require.NoError(t, err)
			assert.Len(t, products, tt.expected)
		})
	}
}

func TestProductRepository_ListBySeller(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	alice := seedUser(t, pool, "alice", model.RoleSeller, nil)
	bob := seedUser(t, pool, "bob", model.RoleSeller, nil)

	now := time.Now()
	seedProducts(t, pool, []model.Product{
		{ID: "A1", SellerID: alice.ID, Name: "A1", Price: decimal.NewFromInt(1), CreatedAt: now},
		{ID: "A2", SellerID: alice.ID, Name: "A2", Price: decimal.NewFromInt(1), CreatedAt: now.Add(time.Second)},
		{ID: "B1", SellerID: bob.ID, Name: "B1", Price: decimal.NewFromInt(1), CreatedAt: now},
	})

	products, err := repo.ListBySeller(context.Background(), alice.ID)

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A2", products[0].ID)
	assert.Equal(t, "A1", products[1].ID)
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seller := seedUser(t, pool, "seller", model.RoleSeller, nil)
	seedProducts(t, pool, []model.Product{
		{ID: "P001", SellerID: seller.ID, Name: "Old", Price: decimal.NewFromInt(10), Stock: 1, CreatedAt: time.Now()},
	})

	ctx := context.Background()

	t.Run("Update existing product", func(t *testing.T) {
		err := repo.Update(ctx, &model.Product{ID: "P001", Name: "New", Unit: "kg", Price: decimal.RequireFromString("12.50"), Stock: 7})
		require.NoError(t, err)

		product, err := repo.GetByID(ctx, "P001")
		require.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, "New", product.Name)
		assert.Equal(t, "kg", product.Unit)
		assert.Equal(t, 7, product.Stock)
		assert.True(t, decimal.RequireFromString("12.50").Equal(product.Price))
	})

	t.Run("Update missing product", func(t *testing.T) {
		err := repo.Update(ctx, &model.Product{ID: "P999", Name: "X", Price: decimal.Zero})
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("Delete existing product", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "P001"))

		product, err := repo.GetByID(ctx, "P001")
		require.NoError(t, err)
		assert.Nil(t, product)
	})

	t.Run("Delete missing product", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, "P001"), model.ErrProductNotFound)
	})
}

func TestProductRepository_ErrorPaths(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())

	// Close the pool to simulate database errors
	pool.Close()

	ctx := context.Background()

	t.Run("List with closed pool", func(t *testing.T) {
		products, err := repo.List(ctx, model.ProductFilter{Limit: 10})

		require.Error(t, err)
		assert.Nil(t, products)
	})

	t.Run("GetByID with closed pool", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "P001")

		require.Error(t, err)
		assert.Nil(t, product)
	})

	t.Run("GetByIDs with closed pool", func(t *testing.T) {
		products, err := repo.GetByIDs(ctx, []string{"P001"})

		require.Error(t, err)
		assert.Nil(t, products)
	})
}
