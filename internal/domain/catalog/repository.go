package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows product listings.
type ListFilter struct {
	Tag      string // empty means all tags
	Page     int
	PageSize int
}

// Repository defines the interface for product persistence
type Repository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySlug finds a product by slug
	FindBySlug(ctx context.Context, slug string) (*Product, error)

	// FindActive lists active products, optionally restricted to a tag,
	// ordered by name
	FindActive(ctx context.Context, filter ListFilter) ([]Product, error)

	// CountActive counts active products matching the filter
	CountActive(ctx context.Context, filter ListFilter) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, p *Product) error
}
