package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/model"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	defaultUnit     = "pcs"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	now         func() time.Time
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		now:         time.Now,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves products with pagination.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Query = strings.TrimSpace(filter.Query)

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Str("query", filter.Query).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// ListBySeller retrieves a seller's products.
func (s *productService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error) {
	products, err := s.productRepo.ListBySeller(ctx, sellerID)
	if err != nil {
		s.logger.Error().Err(err).Str("seller_id", sellerID.String()).Msg("failed to list seller products")
		return nil, fmt.Errorf("failed to get seller products: %w", err)
	}
	return products, nil
}

// Create lists a new product for the calling seller.
func (s *productService) Create(ctx context.Context, principal model.Principal, input *model.ProductInput) (*model.Product, error) {
	if !principal.Authenticated() {
		return nil, model.ErrUnauthorised
	}
	if !principal.IsSeller() {
		s.logger.Warn().Str("user_id", principal.UserID.String()).Msg("non-seller attempted to create product")
		return nil, model.ErrForbidden
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}

	product := &model.Product{
		ID:        id,
		SellerID:  principal.UserID,
		CreatedAt: s.now().UTC(),
	}
	applyProductInput(product, input)

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", id).
		Str("seller_id", principal.UserID.String()).
		Msg("product created")

	return product, nil
}

// Update edits an owned product.
func (s *productService) Update(ctx context.Context, principal model.Principal, id string, input *model.ProductInput) (*model.Product, error) {
	product, err := s.authorise(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	applyProductInput(product, input)

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return product, nil
}

// Delete removes an owned product.
func (s *productService) Delete(ctx context.Context, principal model.Principal, id string) error {
	if _, err := s.authorise(ctx, principal, id); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// authorise loads the product and checks principal may modify it.
func (s *productService) authorise(ctx context.Context, principal model.Principal, id string) (*model.Product, error) {
	if !principal.Authenticated() {
		return nil, model.ErrUnauthorised
	}

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !principal.IsAdmin() && !(principal.IsSeller() && product.SellerID == principal.UserID) {
		s.logger.Warn().
			Str("product_id", id).
			Str("user_id", principal.UserID.String()).
			Msg("product modification forbidden")
		return nil, model.ErrForbidden
	}

	return product, nil
}

func validateProductInput(input *model.ProductInput) error {
	if input == nil || strings.TrimSpace(input.Name) == "" {
		return model.MissingField("name")
	}
	if input.Price.IsNegative() {
		return model.ErrInvalidPrice
	}
	if input.Stock < 0 {
		return model.ErrInvalidQuantity
	}
	return nil
}

func applyProductInput(p *model.Product, input *model.ProductInput) {
	p.Name = strings.TrimSpace(input.Name)
	p.Description = input.Description
	p.Category = input.Category
	p.Brand = input.Brand
	p.Unit = input.Unit
	if p.Unit == "" {
		p.Unit = defaultUnit
	}
	p.Price = input.Price.Round(2)
	p.Stock = input.Stock
}
