package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/internal/repository"
)

type catalogService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repos *repository.Repositories, logger *zap.Logger) *catalogService {
	return &catalogService{
		repos:  repos,
		logger: logger,
	}
}

// ListProducts returns active catalog products
func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repos.Product.List(ctx, true)
}

// GetProduct returns a product with its variants
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, []*domain.ProductVariant, error) {
	product, err := s.repos.Product.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	variants, err := s.repos.Variant.ListByProduct(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return product, variants, nil
}

// FindVariant resolves a purchasable unit by product, size and color
func (s *catalogService) FindVariant(ctx context.Context, productID uuid.UUID, size, color string) (*domain.ProductVariant, error) {
	return s.repos.Variant.GetByOptions(ctx, productID, size, color)
}

// FindVariantBySKU resolves a purchasable unit by its SKU
func (s *catalogService) FindVariantBySKU(ctx context.Context, sku string) (*domain.ProductVariant, error) {
	return s.repos.Variant.GetBySKU(ctx, sku)
}
