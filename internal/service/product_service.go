package service

import (
	"context"
	"fmt"

	"optika/internal/model"
	"optika/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	products repository.ProductRepository
	logger   zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		products: products,
		logger:   logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves all products with pagination.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.products.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFound(id)
	}

	return product, nil
}
