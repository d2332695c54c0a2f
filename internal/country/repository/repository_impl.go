package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/fairpricelabs/fairprice/internal/country/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type countryRepository struct{}

func NewCountryRepository() domain.Repository {
	return &countryRepository{}
}

func (r *countryRepository) ListGroups(ctx context.Context, db *gorm.DB) ([]domain.CountryGroup, error) {
	var groups []domain.CountryGroup
	err := db.WithContext(ctx).
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}

func (r *countryRepository) ListCountries(ctx context.Context, db *gorm.DB) ([]domain.Country, error) {
	var countries []domain.Country
	err := db.WithContext(ctx).Find(&countries).Error
	return countries, err
}

func (r *countryRepository) FindCountryByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Country, error) {
	var country domain.Country
	err := db.WithContext(ctx).
		Where("code = ?", code).
		First(&country).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCountryNotFound
		}
		return nil, err
	}
	return &country, nil
}

func (r *countryRepository) ListDiscountsByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]domain.CountryGroupDiscount, error) {
	var discounts []domain.CountryGroupDiscount
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&discounts).Error
	return discounts, err
}

func (r *countryRepository) UpsertDiscount(ctx context.Context, db *gorm.DB, d *domain.CountryGroupDiscount) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "group_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"coupon", "percentage", "updated_at",
			}),
		}).
		Create(d).Error
}

func (r *countryRepository) DeleteDiscount(ctx context.Context, db *gorm.DB, productID, groupID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("product_id = ? AND group_id = ?", productID, groupID).
		Delete(&domain.CountryGroupDiscount{}).Error
}

func (r *countryRepository) UpsertGroup(ctx context.Context, db *gorm.DB, g *domain.CountryGroup) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"recommended_discount", "updated_at",
			}),
		}).
		Create(g).Error
}

func (r *countryRepository) UpsertCountry(ctx context.Context, db *gorm.DB, c *domain.Country) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "group_id", "updated_at",
			}),
		}).
		Create(c).Error
}
