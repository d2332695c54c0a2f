package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ProductView is one recorded banner impression. CountryID is nil when the
// visitor's country could not be mapped.
type ProductView struct {
	ID        snowflake.ID  `gorm:"column:id;primaryKey" json:"id"`
	ProductID snowflake.ID  `gorm:"column:product_id;index" json:"product_id"`
	CountryID *snowflake.ID `gorm:"column:country_id" json:"country_id"`
	VisitedAt time.Time     `gorm:"column:visited_at;index" json:"visited_at"`
}

func (ProductView) TableName() string { return "product_views" }

// RecordRequest captures one impression. OwnerID is carried for cache
// scoping only; ownership is already resolved by the caller.
type RecordRequest struct {
	ProductID snowflake.ID
	OwnerID   string
	CountryID *snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, view *ProductView) error
	// CountByOwnerSince counts impressions across all of the owner's
	// products from the given instant.
	CountByOwnerSince(ctx context.Context, db *gorm.DB, ownerID string, since time.Time) (int64, error)
}

type Service interface {
	Record(ctx context.Context, req RecordRequest) error
	CountSince(ctx context.Context, ownerID string, since time.Time) (int64, error)
}
