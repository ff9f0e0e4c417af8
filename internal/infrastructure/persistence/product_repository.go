package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/booktime/backend/internal/domain/catalog"
	"github.com/booktime/backend/internal/domain/shared"
	"github.com/booktime/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.Repository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Preload("Tags").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a product by slug
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("slug = ?", strings.ToLower(slug)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive lists active products ordered by name
func (r *GormProductRepository) FindActive(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	var productModels []models.ProductModel

	query := r.activeQuery(ctx, filter).
		Preload("Tags").
		Order("name ASC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&productModels).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, len(productModels))
	for i := range productModels {
		products[i] = *productModels[i].ToDomain()
	}
	return products, nil
}

// CountActive counts active products matching the filter
func (r *GormProductRepository) CountActive(ctx context.Context, filter catalog.ListFilter) (int64, error) {
	var count int64
	if err := r.activeQuery(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product, replacing its tags
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	model := models.ProductModelFromDomain(p)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags := model.Tags
		model.Tags = nil

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(model).Error; err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", model.ID).
			Delete(&models.ProductTagModel{}).Error; err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Create(&tags).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormProductRepository) activeQuery(ctx context.Context, filter catalog.ListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("active = ?", true)
	if filter.Tag != "" {
		query = query.
			Joins("JOIN product_tags ON product_tags.product_id = products.id").
			Where("product_tags.tag = ?", strings.ToLower(filter.Tag))
	}
	return query
}

var _ catalog.Repository = (*GormProductRepository)(nil)
