package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/fairpricelabs/fairprice/internal/banner/domain"
	countrydomain "github.com/fairpricelabs/fairprice/internal/country/domain"
	"gorm.io/gorm"
)

type bannerRepository struct{}

func NewBannerRepository() domain.Repository {
	return &bannerRepository{}
}

func (r *bannerRepository) FindProductWithCustomization(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*domain.ProductWithCustomization, error) {
	var row domain.ProductWithCustomization
	err := db.WithContext(ctx).
		Table("products").
		Select(`products.id AS product_id,
			products.owner_id AS owner_id,
			products.url AS url,
			product_customizations.location_message,
			product_customizations.background_color,
			product_customizations.text_color,
			product_customizations.font_size,
			product_customizations.banner_container,
			product_customizations.is_sticky,
			product_customizations.class_prefix`).
		Joins("JOIN product_customizations ON product_customizations.product_id = products.id").
		Where("products.id = ?", productID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoBanner
		}
		return nil, err
	}
	return &row, nil
}

func (r *bannerRepository) FindCountryDiscount(ctx context.Context, db *gorm.DB, productID snowflake.ID, countryCode string) (*domain.CountryDiscount, error) {
	var country countrydomain.Country
	err := db.WithContext(ctx).
		Where("code = ?", countryCode).
		First(&country).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoBanner
		}
		return nil, err
	}

	row := &domain.CountryDiscount{
		CountryID:   country.ID,
		CountryName: country.Name,
	}

	var discount countrydomain.CountryGroupDiscount
	err = db.WithContext(ctx).
		Where("product_id = ? AND group_id = ?", productID, country.GroupID).
		First(&discount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return row, nil
		}
		return nil, err
	}

	row.Coupon = discount.Coupon
	row.Percentage = discount.Percentage
	return row, nil
}
