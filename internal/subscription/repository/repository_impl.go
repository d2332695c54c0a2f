package repository

import (
	"context"
	"errors"

	"github.com/fairpricelabs/fairprice/internal/subscription/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type subscriptionRepository struct{}

func NewSubscriptionRepository() domain.Repository {
	return &subscriptionRepository{}
}

func (r *subscriptionRepository) Insert(ctx context.Context, db *gorm.DB, sub *domain.UserSubscription) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoNothing: true,
		}).
		Create(sub)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *subscriptionRepository) FindByOwner(ctx context.Context, db *gorm.DB, ownerID string) (*domain.UserSubscription, error) {
	var sub domain.UserSubscription
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindByCustomerRef(ctx context.Context, db *gorm.DB, customerRef string) (*domain.UserSubscription, error) {
	var sub domain.UserSubscription
	err := db.WithContext(ctx).
		Where("billing_customer_ref = ?", customerRef).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, db *gorm.DB, sub *domain.UserSubscription) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.UserSubscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]any{
			"tier":                          sub.Tier,
			"billing_customer_ref":          sub.BillingCustomerRef,
			"billing_subscription_ref":      sub.BillingSubscriptionRef,
			"billing_subscription_item_ref": sub.BillingSubscriptionItemRef,
			"updated_at":                    sub.UpdatedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *subscriptionRepository) DeleteByOwner(ctx context.Context, db *gorm.DB, ownerID string) (*domain.UserSubscription, error) {
	sub, err := r.FindByOwner(ctx, db, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := db.WithContext(ctx).
		Where("id = ?", sub.ID).
		Delete(&domain.UserSubscription{}).Error; err != nil {
		return nil, err
	}
	return sub, nil
}
