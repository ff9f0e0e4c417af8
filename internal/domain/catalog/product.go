package catalog

import (
	"strings"
	"time"

	"github.com/booktime/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable storefront item.
type Product struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	Active      bool
	InStock     bool
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct creates an active, in-stock product.
func NewProduct(name, slug string, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name is required")
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_SLUG", "Product slug is required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	now := time.Now()
	return &Product{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		Price:     price,
		Active:    true,
		InStock:   true,
		Tags:      make([]string, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddTag attaches a tag slug to the product. Duplicates are ignored.
func (p *Product) AddTag(tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return
	}
	for _, existing := range p.Tags {
		if existing == tag {
			return
		}
	}
	p.Tags = append(p.Tags, tag)
	p.UpdatedAt = time.Now()
}

// Deactivate removes the product from the storefront.
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}
