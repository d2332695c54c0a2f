package service

import (
	"context"
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/fairpricelabs/fairprice/internal/cache"
	"github.com/fairpricelabs/fairprice/internal/clock"
	"github.com/fairpricelabs/fairprice/internal/country/domain"
	productdomain "github.com/fairpricelabs/fairprice/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Cache    *cache.Cache
	Clock    clock.Clock
	Repo     domain.Repository
	Products productdomain.Service
	Logger   *zap.Logger
}

type countryService struct {
	db       *gorm.DB
	cache    *cache.Cache
	clock    clock.Clock
	repo     domain.Repository
	products productdomain.Service
	log      *zap.Logger
}

func NewCountryService(p Params) domain.Service {
	return &countryService{
		db:       p.DB,
		cache:    p.Cache,
		clock:    p.Clock,
		repo:     p.Repo,
		products: p.Products,
		log:      p.Logger.Named("country.service"),
	}
}

func (s *countryService) GroupsWithDiscounts(ctx context.Context, productID snowflake.ID, ownerID string) ([]domain.GroupWithDiscount, error) {
	// Ownership gate. A product the caller does not own reads as absent.
	if _, err := s.products.Get(ctx, ownerID, productID); err != nil {
		return nil, err
	}

	return cache.Fetch(ctx, s.cache, "countries.groups_with_discounts", productID,
		[]cache.Tag{
			cache.IDTag(productID, cache.KindProducts),
			cache.GlobalTag(cache.KindCountries),
			cache.GlobalTag(cache.KindCountryGroups),
		},
		func(ctx context.Context) ([]domain.GroupWithDiscount, error) {
			return s.groupsWithDiscounts(ctx, productID)
		})
}

func (s *countryService) groupsWithDiscounts(ctx context.Context, productID snowflake.ID) ([]domain.GroupWithDiscount, error) {
	groups, err := s.repo.ListGroups(ctx, s.db)
	if err != nil {
		return nil, err
	}
	countries, err := s.repo.ListCountries(ctx, s.db)
	if err != nil {
		return nil, err
	}
	discounts, err := s.repo.ListDiscountsByProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	codesByGroup := map[int64][]string{}
	for _, c := range countries {
		codesByGroup[int64(c.GroupID)] = append(codesByGroup[int64(c.GroupID)], c.Code)
	}
	discountByGroup := map[int64]domain.Discount{}
	for _, d := range discounts {
		discountByGroup[int64(d.GroupID)] = domain.Discount{
			Coupon:     d.Coupon,
			Percentage: d.Percentage,
		}
	}

	out := make([]domain.GroupWithDiscount, 0, len(groups))
	for _, g := range groups {
		codes := codesByGroup[int64(g.ID)]
		sort.Strings(codes)

		row := domain.GroupWithDiscount{
			ID:                  g.ID,
			Name:                g.Name,
			RecommendedDiscount: g.RecommendedDiscount,
			CountryCodes:        codes,
		}
		if d, ok := discountByGroup[int64(g.ID)]; ok {
			row.Discount = &d
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *countryService) UpdateDiscounts(ctx context.Context, productID snowflake.ID, ownerID string, updates []domain.DiscountUpdate) error {
	if _, err := s.products.Get(ctx, ownerID, productID); err != nil {
		return err
	}
	for _, u := range updates {
		if u.Percentage > 1 {
			return domain.ErrInvalidPercentage
		}
	}

	now := s.clock.Now(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			// A cleared coupon or a non-positive percentage means no
			// discount for this group: the row goes away entirely.
			if u.Coupon == "" || u.Percentage <= 0 {
				if err := s.repo.DeleteDiscount(ctx, tx, productID, u.GroupID); err != nil {
					return err
				}
				continue
			}
			if err := s.repo.UpsertDiscount(ctx, tx, &domain.CountryGroupDiscount{
				GroupID:    u.GroupID,
				ProductID:  productID,
				Coupon:     u.Coupon,
				Percentage: u.Percentage,
				CreatedAt:  now,
				UpdatedAt:  now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateScopes(ctx, cache.KindProducts, ownerID, productID)
	return nil
}

func (s *countryService) LookupCountryByCode(ctx context.Context, code string) (*domain.Country, error) {
	return cache.Fetch(ctx, s.cache, "countries.by_code", code,
		[]cache.Tag{cache.GlobalTag(cache.KindCountries)},
		func(ctx context.Context) (*domain.Country, error) {
			return s.repo.FindCountryByCode(ctx, s.db, code)
		})
}
