package repository

import (
	"context"
	"time"

	"github.com/fairpricelabs/fairprice/internal/view/domain"
	"gorm.io/gorm"
)

type viewRepository struct{}

func NewViewRepository() domain.Repository {
	return &viewRepository{}
}

func (r *viewRepository) Insert(ctx context.Context, db *gorm.DB, view *domain.ProductView) error {
	return db.WithContext(ctx).Create(view).Error
}

func (r *viewRepository) CountByOwnerSince(ctx context.Context, db *gorm.DB, ownerID string, since time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.ProductView{}).
		Joins("JOIN products ON products.id = product_views.product_id").
		Where("products.owner_id = ? AND product_views.visited_at >= ?", ownerID, since).
		Count(&count).Error
	return count, err
}
