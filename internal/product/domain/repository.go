package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Product struct {
	ID          snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	OwnerID     string       `gorm:"column:owner_id;index" json:"owner_id"`
	Name        string       `gorm:"column:name" json:"name"`
	URL         string       `gorm:"column:url" json:"url"`
	Description string       `gorm:"column:description" json:"description"`
	CreatedAt   time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// ProductCustomization holds the banner presentation settings, one row per
// product.
type ProductCustomization struct {
	ID              snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	ProductID       snowflake.ID `gorm:"column:product_id;uniqueIndex" json:"product_id"`
	LocationMessage string       `gorm:"column:location_message" json:"location_message"`
	BackgroundColor string       `gorm:"column:background_color" json:"background_color"`
	TextColor       string       `gorm:"column:text_color" json:"text_color"`
	FontSize        string       `gorm:"column:font_size" json:"font_size"`
	BannerContainer string       `gorm:"column:banner_container" json:"banner_container"`
	IsSticky        bool         `gorm:"column:is_sticky" json:"is_sticky"`
	ClassPrefix     string       `gorm:"column:class_prefix" json:"class_prefix"`
	CreatedAt       time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (ProductCustomization) TableName() string { return "product_customizations" }

type Repository interface {
	ListByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]Product, error)
	FindByIDAndOwner(ctx context.Context, db *gorm.DB, ownerID string, id snowflake.ID) (*Product, error)
	CountByOwner(ctx context.Context, db *gorm.DB, ownerID string) (int64, error)
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	// Update writes the mutable fields of a product scoped to its owner and
	// reports the number of matched rows.
	Update(ctx context.Context, db *gorm.DB, product *Product) (int64, error)
	// Delete removes the product scoped to its owner and reports the number
	// of matched rows.
	Delete(ctx context.Context, db *gorm.DB, ownerID string, id snowflake.ID) (int64, error)
	ListIDsByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]snowflake.ID, error)
	DeleteAllByOwner(ctx context.Context, db *gorm.DB, ownerID string) error

	CreateCustomization(ctx context.Context, db *gorm.DB, c *ProductCustomization) error
	FindCustomizationByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*ProductCustomization, error)
	UpdateCustomization(ctx context.Context, db *gorm.DB, c *ProductCustomization) (int64, error)
}
