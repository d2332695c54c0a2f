package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fairpricelabs/fairprice/internal/banner/domain"
	"github.com/fairpricelabs/fairprice/internal/cache"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Cache  *cache.Cache
	Repo   domain.Repository
	Logger *zap.Logger
}

type bannerService struct {
	db    *gorm.DB
	cache *cache.Cache
	repo  domain.Repository
	log   *zap.Logger
}

func NewBannerService(p Params) domain.Service {
	return &bannerService{
		db:    p.DB,
		cache: p.Cache,
		repo:  p.Repo,
		log:   p.Logger.Named("banner.service"),
	}
}

func (s *bannerService) Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.Resolution, error) {
	res := &domain.Resolution{}

	product, err := cache.Fetch(ctx, s.cache, "banner.product", req.ProductID,
		[]cache.Tag{cache.IDTag(req.ProductID, cache.KindProducts)},
		func(ctx context.Context) (*domain.ProductWithCustomization, error) {
			return s.repo.FindProductWithCustomization(ctx, s.db, req.ProductID)
		})
	if err != nil {
		if errors.Is(err, domain.ErrNoBanner) {
			return res, nil
		}
		return nil, err
	}

	// The banner only renders on the registered page.
	if NormalizeURL(req.PageURL) != NormalizeURL(product.URL) {
		return res, nil
	}
	res.Product = product

	type discountArgs struct {
		ProductID   snowflake.ID `json:"product_id"`
		CountryCode string       `json:"country_code"`
	}
	discount, err := cache.Fetch(ctx, s.cache, "banner.discount",
		discountArgs{ProductID: req.ProductID, CountryCode: req.CountryCode},
		[]cache.Tag{
			cache.IDTag(req.ProductID, cache.KindProducts),
			cache.GlobalTag(cache.KindCountries),
			cache.GlobalTag(cache.KindCountryGroups),
		},
		func(ctx context.Context) (*domain.CountryDiscount, error) {
			return s.repo.FindCountryDiscount(ctx, s.db, req.ProductID, req.CountryCode)
		})
	if err != nil {
		if errors.Is(err, domain.ErrNoBanner) {
			return res, nil
		}
		return nil, err
	}
	res.Country = &domain.ResolvedCountry{ID: discount.CountryID, Name: discount.CountryName}

	if discount.Coupon != "" && discount.Percentage > 0 {
		res.Discount = &domain.Discount{Coupon: discount.Coupon, Percentage: discount.Percentage}
	}
	return res, nil
}

// NormalizeURL strips a single trailing slash so "https://x.com/page" and
// "https://x.com/page/" compare equal.
func NormalizeURL(u string) string {
	if strings.HasSuffix(u, "/") {
		return u[:len(u)-1]
	}
	return u
}
