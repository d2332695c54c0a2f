package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fairpricelabs/fairprice/internal/analytics/domain"
	"gorm.io/gorm"
)

type analyticsRepository struct{}

func NewAnalyticsRepository() domain.Repository {
	return &analyticsRepository{}
}

func (r *analyticsRepository) ListVisitTimes(ctx context.Context, db *gorm.DB, ownerID string, productID *snowflake.ID, since time.Time) ([]time.Time, error) {
	q := db.WithContext(ctx).
		Table("product_views").
		Joins("JOIN products ON products.id = product_views.product_id").
		Where("products.owner_id = ? AND product_views.visited_at >= ?", ownerID, since)
	if productID != nil {
		q = q.Where("product_views.product_id = ?", *productID)
	}

	var times []time.Time
	err := q.Order("product_views.visited_at ASC").
		Pluck("product_views.visited_at", &times).Error
	return times, err
}

func (r *analyticsRepository) CountByCountry(ctx context.Context, db *gorm.DB, ownerID string, productID *snowflake.ID, since time.Time, limit int) ([]domain.CountryCount, error) {
	q := db.WithContext(ctx).
		Table("product_views").
		Select("countries.code AS country_code, countries.name AS country_name, COUNT(product_views.id) AS views").
		Joins("JOIN products ON products.id = product_views.product_id").
		Joins("JOIN countries ON countries.id = product_views.country_id").
		Where("products.owner_id = ? AND product_views.visited_at >= ?", ownerID, since)
	if productID != nil {
		q = q.Where("product_views.product_id = ?", *productID)
	}

	var rows []domain.CountryCount
	err := q.Group("countries.id, countries.code, countries.name").
		Order("views DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) CountByGroup(ctx context.Context, db *gorm.DB, ownerID string, productID *snowflake.ID, since time.Time) ([]domain.GroupCount, error) {
	// Window filters live in the subquery so groups without views still
	// appear with a zero count.
	inner := db.WithContext(ctx).
		Table("product_views").
		Select("product_views.id, product_views.country_id").
		Joins("JOIN products ON products.id = product_views.product_id").
		Where("products.owner_id = ? AND product_views.visited_at >= ?", ownerID, since)
	if productID != nil {
		inner = inner.Where("product_views.product_id = ?", *productID)
	}

	var rows []domain.GroupCount
	err := db.WithContext(ctx).
		Table("country_groups").
		Select("country_groups.name AS group_name, COUNT(pv.id) AS views").
		Joins("LEFT JOIN countries ON countries.group_id = country_groups.id").
		Joins("LEFT JOIN (?) pv ON pv.country_id = countries.id", inner).
		Group("country_groups.id, country_groups.name").
		Order("country_groups.name ASC").
		Scan(&rows).Error
	return rows, err
}
