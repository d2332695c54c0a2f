package domain

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ProductWithCustomization is the banner-facing read of a product joined
// with its presentation row.
type ProductWithCustomization struct {
	ProductID       snowflake.ID `gorm:"column:product_id" json:"product_id"`
	OwnerID         string       `gorm:"column:owner_id" json:"owner_id"`
	URL             string       `gorm:"column:url" json:"url"`
	LocationMessage string       `gorm:"column:location_message" json:"location_message"`
	BackgroundColor string       `gorm:"column:background_color" json:"background_color"`
	TextColor       string       `gorm:"column:text_color" json:"text_color"`
	FontSize        string       `gorm:"column:font_size" json:"font_size"`
	BannerContainer string       `gorm:"column:banner_container" json:"banner_container"`
	IsSticky        bool         `gorm:"column:is_sticky" json:"is_sticky"`
	ClassPrefix     string       `gorm:"column:class_prefix" json:"class_prefix"`
}

// CountryDiscount is the visitor country resolved to the product's discount.
// Coupon is empty when the product has no discount for the country's group.
type CountryDiscount struct {
	CountryID   snowflake.ID `gorm:"column:country_id" json:"country_id"`
	CountryName string       `gorm:"column:country_name" json:"country_name"`
	Coupon      string       `gorm:"column:coupon" json:"coupon"`
	Percentage  float64      `gorm:"column:percentage" json:"percentage"`
}

// ResolvedCountry is the visitor country once matched.
type ResolvedCountry struct {
	ID   snowflake.ID `json:"id"`
	Name string       `json:"name"`
}

// Discount is the effective coupon for the resolved country's group.
type Discount struct {
	Coupon     string  `json:"coupon"`
	Percentage float64 `json:"percentage"`
}

// Resolution is the outcome of a banner lookup. Any field may be absent;
// absence is a terminal outcome, not an error. A banner renders only when
// all three are present.
type Resolution struct {
	Product  *ProductWithCustomization `json:"product"`
	Country  *ResolvedCountry          `json:"country"`
	Discount *Discount                 `json:"discount"`
}

// Banner renders the resolution, or nil when any link of the chain is
// missing. The discount placeholder renders as a whole percentage.
func (r *Resolution) Banner() *Banner {
	if r == nil || r.Product == nil || r.Country == nil || r.Discount == nil {
		return nil
	}

	percent := strconv.Itoa(int(math.Round(r.Discount.Percentage * 100)))
	message := strings.NewReplacer(
		"{country}", r.Country.Name,
		"{coupon}", r.Discount.Coupon,
		"{discount}", percent,
	).Replace(r.Product.LocationMessage)

	return &Banner{
		ProductID:       r.Product.ProductID,
		OwnerID:         r.Product.OwnerID,
		CountryID:       r.Country.ID,
		Message:         message,
		Coupon:          r.Discount.Coupon,
		Percentage:      r.Discount.Percentage,
		CountryName:     r.Country.Name,
		BackgroundColor: r.Product.BackgroundColor,
		TextColor:       r.Product.TextColor,
		FontSize:        r.Product.FontSize,
		BannerContainer: r.Product.BannerContainer,
		IsSticky:        r.Product.IsSticky,
		ClassPrefix:     r.Product.ClassPrefix,
	}
}

// Banner is a fully resolved banner ready to render.
type Banner struct {
	ProductID       snowflake.ID `json:"product_id"`
	OwnerID         string       `json:"owner_id"`
	CountryID       snowflake.ID `json:"-"`
	Message         string       `json:"message"`
	Coupon          string       `json:"coupon"`
	Percentage      float64      `json:"percentage"`
	CountryName     string       `json:"country_name"`
	BackgroundColor string       `json:"background_color"`
	TextColor       string       `json:"text_color"`
	FontSize        string       `json:"font_size"`
	BannerContainer string       `json:"banner_container"`
	IsSticky        bool         `json:"is_sticky"`
	ClassPrefix     string       `json:"class_prefix"`
}

// ResolveRequest identifies one banner render attempt.
type ResolveRequest struct {
	ProductID   snowflake.ID
	CountryCode string
	// PageURL is the embedding page, from the Referer or Origin header.
	PageURL string
}

type Repository interface {
	FindProductWithCustomization(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*ProductWithCustomization, error)
	// FindCountryDiscount resolves a country code to the product's discount
	// through the country's purchasing-power group. The row comes back with
	// an empty coupon when the country exists but no discount is set.
	FindCountryDiscount(ctx context.Context, db *gorm.DB, productID snowflake.ID, countryCode string) (*CountryDiscount, error)
}

type Service interface {
	// Resolve looks up the product, country, and effective discount for one
	// render attempt. Missing links come back as absent fields, not errors.
	Resolve(ctx context.Context, req ResolveRequest) (*Resolution, error)
}

// ErrNoBanner is the endpoint-facing outcome for every non-renderable case:
// unknown product, URL mismatch, unknown country, or no discount for the
// country's group.
var ErrNoBanner = errors.New("no_banner")
