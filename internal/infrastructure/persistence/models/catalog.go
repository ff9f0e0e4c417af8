package models

import (
	"time"

	"github.com/booktime/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product entity.
type ProductModel struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name        string            `gorm:"type:varchar(200);not null"`
	Slug        string            `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description string            `gorm:"type:text"`
	Price       decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Active      bool              `gorm:"not null;default:true;index"`
	InStock     bool              `gorm:"not null;default:true"`
	Tags        []ProductTagModel `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time         `gorm:"not null"`
	UpdatedAt   time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ProductTagModel attaches a tag slug to a product.
type ProductTagModel struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Tag       string    `gorm:"type:varchar(100);primaryKey;index"`
}

// TableName returns the table name for GORM
func (ProductTagModel) TableName() string {
	return "product_tags"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	tags := make([]string, len(m.Tags))
	for i, t := range m.Tags {
		tags[i] = t.Tag
	}
	return &catalog.Product{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Price:       m.Price,
		Active:      m.Active,
		InStock:     m.InStock,
		Tags:        tags,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	tags := make([]ProductTagModel, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = ProductTagModel{ProductID: p.ID, Tag: t}
	}
	return &ProductModel{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Active:      p.Active,
		InStock:     p.InStock,
		Tags:        tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
