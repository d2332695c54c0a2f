package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// CountryGroup is one purchasing-power band. Groups and their country
// membership are reference data maintained by the seeder.
type CountryGroup struct {
	ID                  snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	Name                string       `gorm:"column:name;uniqueIndex" json:"name"`
	RecommendedDiscount float64      `gorm:"column:recommended_discount" json:"recommended_discount"`
	CreatedAt           time.Time    `gorm:"column:created_at" json:"-"`
	UpdatedAt           time.Time    `gorm:"column:updated_at" json:"-"`
}

func (CountryGroup) TableName() string { return "country_groups" }

type Country struct {
	ID        snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	Name      string       `gorm:"column:name" json:"name"`
	Code      string       `gorm:"column:code;uniqueIndex" json:"code"`
	GroupID   snowflake.ID `gorm:"column:group_id;index" json:"group_id"`
	CreatedAt time.Time    `gorm:"column:created_at" json:"-"`
	UpdatedAt time.Time    `gorm:"column:updated_at" json:"-"`
}

func (Country) TableName() string { return "countries" }

// CountryGroupDiscount is one product's coupon for one group. Composite key:
// a product has at most one discount per group.
type CountryGroupDiscount struct {
	GroupID    snowflake.ID `gorm:"column:group_id;primaryKey" json:"group_id"`
	ProductID  snowflake.ID `gorm:"column:product_id;primaryKey" json:"product_id"`
	Coupon     string       `gorm:"column:coupon" json:"coupon"`
	Percentage float64      `gorm:"column:percentage" json:"percentage"`
	CreatedAt  time.Time    `gorm:"column:created_at" json:"-"`
	UpdatedAt  time.Time    `gorm:"column:updated_at" json:"-"`
}

func (CountryGroupDiscount) TableName() string { return "country_group_discounts" }

// Discount is the coupon/percentage pair as exposed to callers. Percentage
// is a fraction in (0, 1].
type Discount struct {
	Coupon     string  `json:"coupon"`
	Percentage float64 `json:"percentage"`
}

// GroupWithDiscount is a group joined with its member country codes and the
// product's discount, if any.
type GroupWithDiscount struct {
	ID                  snowflake.ID `json:"id"`
	Name                string       `json:"name"`
	RecommendedDiscount float64      `json:"recommended_discount"`
	CountryCodes        []string     `json:"country_codes"`
	Discount            *Discount    `json:"discount"`
}

// DiscountUpdate sets or clears one group's discount. An empty coupon or a
// non-positive percentage clears the row.
type DiscountUpdate struct {
	GroupID    snowflake.ID `json:"group_id" binding:"required"`
	Coupon     string       `json:"coupon"`
	Percentage float64      `json:"percentage"`
}

type Repository interface {
	ListGroups(ctx context.Context, db *gorm.DB) ([]CountryGroup, error)
	ListCountries(ctx context.Context, db *gorm.DB) ([]Country, error)
	FindCountryByCode(ctx context.Context, db *gorm.DB, code string) (*Country, error)
	ListDiscountsByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]CountryGroupDiscount, error)
	UpsertDiscount(ctx context.Context, db *gorm.DB, d *CountryGroupDiscount) error
	DeleteDiscount(ctx context.Context, db *gorm.DB, productID, groupID snowflake.ID) error

	// Seed support. Upserts key on the natural identifiers (group name,
	// country code).
	UpsertGroup(ctx context.Context, db *gorm.DB, g *CountryGroup) error
	UpsertCountry(ctx context.Context, db *gorm.DB, c *Country) error
}

type Service interface {
	// GroupsWithDiscounts returns every group with its member country codes
	// and the product's configured discount. The caller must own the product.
	GroupsWithDiscounts(ctx context.Context, productID snowflake.ID, ownerID string) ([]GroupWithDiscount, error)
	// UpdateDiscounts applies the product's discount settings in one
	// transaction.
	UpdateDiscounts(ctx context.Context, productID snowflake.ID, ownerID string, updates []DiscountUpdate) error
	LookupCountryByCode(ctx context.Context, code string) (*Country, error)
}

var (
	ErrCountryNotFound   = errors.New("country_not_found")
	ErrInvalidPercentage = errors.New("invalid_discount_percentage")
)
