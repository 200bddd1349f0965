package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting marketplace API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	statsRepo := repository.NewStatsRepository(pool, logger)

	deliveryTariff, err := resolveTariff(ctx, cfg, logger)
	if err != nil {
		return err
	}
	calculator := pricing.NewCalculator(deliveryTariff)

	sessions, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sessions.Close()

	var publisher events.Publisher = events.NewNoopPublisher()
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic, logger)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.OrdersTopic).Msg("publishing order events to kafka")
	}
	defer publisher.Close()

	m := metrics.New(nil)
	authenticator := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(productRepo, sessions, calculator, cfg.Session.BuyNowTTL, m, logger)
	checkoutService := service.NewCheckoutService(service.CheckoutDeps{
		Products:   productRepo,
		Orders:     orderRepo,
		Users:      userRepo,
		Sessions:   sessions,
		Calculator: calculator,
		Publisher:  publisher,
		Observer:   m,
		Attempts:   cfg.Checkout.OrderNumberAttempts,
	}, logger)
	orderService := service.NewOrderService(orderRepo, publisher, m, logger)
	dashboardService := service.NewDashboardService(productRepo, orderRepo, userRepo, statsRepo, logger)
	profileService := service.NewProfileService(userRepo, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Products:  handler.NewProductHandler(productService, logger),
		Cart:      handler.NewCartHandler(cartService, logger),
		Checkout:  handler.NewCheckoutHandler(checkoutService, logger),
		Orders:    handler.NewOrderHandler(orderService, logger),
		Dashboard: handler.NewDashboardHandler(dashboardService, logger),
		Profile:   handler.NewProfileHandler(profileService, logger),
	}, router.Options{
		Tokens:     authenticator,
		Requests:   m,
		Metrics:    m.Handler(),
		SessionTTL: cfg.Session.TTL,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// resolveTariff builds the delivery tariff, reading the optional profile file
// from S3 with a local fallback.
func resolveTariff(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (pricing.DeliveryTariff, error) {
	fileLoader := tariff.NewFileLoader(logger)

	var s3Loader tariff.Loader
	if cfg.S3.Enabled {
		l, err := tariff.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	}
	loader := tariff.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)

	opts := tariff.Options{
		Profile: cfg.Delivery.Profile,
		File:    cfg.Delivery.TariffFile,
		BaseFee: cfg.Delivery.BaseFee,
		PerKm:   cfg.Delivery.PerKm,
	}
	if cfg.Delivery.StoreLat != nil && cfg.Delivery.StoreLng != nil {
		opts.Store = &model.Point{Lat: *cfg.Delivery.StoreLat, Lng: *cfg.Delivery.StoreLng}
	}

	t, err := tariff.Resolve(ctx, opts, loader, logger)
	if err != nil {
		return pricing.DeliveryTariff{}, fmt.Errorf("failed to resolve delivery tariff: %w", err)
	}
	return t, nil
}

// newSessionStore returns the Redis store when enabled and the in-process
// store otherwise.
func newSessionStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (session.Store, error) {
	if !cfg.Redis.Enabled {
		logger.Info().Msg("using in-memory session store (redis disabled)")
		return session.NewMemoryStore(cfg.Session.TTL, logger), nil
	}

	store, err := session.NewRedisStore(ctx, &redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Session.TTL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	return store, nil
}
