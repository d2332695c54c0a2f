package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/fairpricelabs/fairprice/internal/product/domain"
	"gorm.io/gorm"
)

type productRepository struct{}

func NewProductRepository() domain.Repository {
	return &productRepository{}
}

func (r *productRepository) ListByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Product, error) {
	var products []domain.Product
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) FindByIDAndOwner(ctx context.Context, db *gorm.DB, ownerID string, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) CountByOwner(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

func (r *productRepository) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, db *gorm.DB, product *domain.Product) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ? AND owner_id = ?", product.ID, product.OwnerID).
		Updates(map[string]any{
			"name":        product.Name,
			"url":         product.URL,
			"description": product.Description,
			"updated_at":  product.UpdatedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *productRepository) Delete(ctx context.Context, db *gorm.DB, ownerID string, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.Product{})
	return res.RowsAffected, res.Error
}

func (r *productRepository) ListIDsByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("owner_id = ?", ownerID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *productRepository) DeleteAllByOwner(ctx context.Context, db *gorm.DB, ownerID string) error {
	return db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&domain.Product{}).Error
}

func (r *productRepository) CreateCustomization(ctx context.Context, db *gorm.DB, c *domain.ProductCustomization) error {
	return db.WithContext(ctx).Create(c).Error
}

func (r *productRepository) FindCustomizationByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*domain.ProductCustomization, error) {
	var c domain.ProductCustomization
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *productRepository) UpdateCustomization(ctx context.Context, db *gorm.DB, c *domain.ProductCustomization) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.ProductCustomization{}).
		Where("product_id = ?", c.ProductID).
		Updates(map[string]any{
			"location_message": c.LocationMessage,
			"background_color": c.BackgroundColor,
			"text_color":       c.TextColor,
			"font_size":        c.FontSize,
			"banner_container": c.BannerContainer,
			"is_sticky":        c.IsSticky,
			"class_prefix":     c.ClassPrefix,
			"updated_at":       c.UpdatedAt,
		})
	return res.RowsAffected, res.Error
}
