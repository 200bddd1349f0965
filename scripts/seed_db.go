//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/model"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Applies the schema and inserts a demo catalogue. It reads the server's
// environment, so JWT_SECRET must be set as well as the DB_* variables.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	if err := seed(ctx, repository.NewUserRepository(pool, logger), repository.NewProductRepository(pool, logger), logger); err != nil {
		fmt.Fprintf(os.Stderr, "Seeding failed: %v\n", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, users repository.UserRepository, products repository.ProductRepository, logger zerolog.Logger) error {
	makati := model.Point{Lat: 14.5547, Lng: 121.0244}
	demo := []model.User{
		{ID: uuid.New(), Username: "admin", Role: model.RoleAdmin},
		{ID: uuid.New(), Username: "juan", Role: model.RoleBuyer, PhoneNumber: "0917-555-0101", DefaultAddress: "12 Rizal St, Quezon City"},
		{ID: uuid.New(), Username: "sari-sari", Role: model.RoleSeller, Location: &makati},
		{ID: uuid.New(), Username: "bulk-depot", Role: model.RoleSeller},
	}
	for i := range demo {
		if err := users.Create(ctx, &demo[i]); err != nil {
			return err
		}
		fmt.Printf("user %-10s %-6s %s\n", demo[i].Username, demo[i].Role, demo[i].ID)
	}

	now := time.Now().UTC()
	catalogue := []model.Product{
		{ID: "RICE-25", SellerID: demo[2].ID, Name: "Jasmine Rice 25kg", Category: "Grains", Unit: "sack", Price: decimal.RequireFromString("1450.00"), Stock: 40},
		{ID: "OIL-1L", SellerID: demo[2].ID, Name: "Coconut Oil 1L", Category: "Pantry", Unit: "bottle", Price: decimal.RequireFromString("95.50"), Stock: 120},
		{ID: "SUGAR-1", SellerID: demo[3].ID, Name: "Brown Sugar 1kg", Category: "Pantry", Unit: "pack", Price: decimal.RequireFromString("72.00"), Stock: 300},
		{ID: "SARDINES", SellerID: demo[3].ID, Name: "Sardines 155g", Category: "Canned", Unit: "can", Price: decimal.RequireFromString("24.75"), Stock: 1000},
	}
	for i := range catalogue {
		catalogue[i].CreatedAt = now.Add(time.Duration(i) * time.Second)
		if err := products.Create(ctx, &catalogue[i]); err != nil {
			return err
		}
	}

	logger.Info().Int("users", len(demo)).Int("products", len(catalogue)).Msg("demo data seeded")
	return nil
}
