package catalog

import (
	"context"

	"github.com/booktime/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPageSize = 20

// ProductService exposes read-only storefront browsing
type ProductService struct {
	repo   catalog.Repository
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(repo catalog.Repository, logger *zap.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

// ListProducts lists active products, optionally filtered by tag
func (s *ProductService) ListProducts(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	products, err := s.repo.FindActive(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountActive(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetProduct returns a product by id
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// GetProductBySlug returns a product by its slug
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	return s.repo.FindBySlug(ctx, slug)
}
