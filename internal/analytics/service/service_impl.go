package service

import (
	"context"
	"time"

	"github.com/fairpricelabs/fairprice/internal/analytics/domain"
	"github.com/fairpricelabs/fairprice/internal/cache"
	"github.com/fairpricelabs/fairprice/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// topCountriesLimit caps the by-country breakdown.
const topCountriesLimit = 25

type Params struct {
	fx.In

	DB     *gorm.DB
	Cache  *cache.Cache
	Clock  clock.Clock
	Repo   domain.Repository
	Logger *zap.Logger
}

type analyticsService struct {
	db    *gorm.DB
	cache *cache.Cache
	clock clock.Clock
	repo  domain.Repository
	log   *zap.Logger
}

func NewAnalyticsService(p Params) domain.Service {
	return &analyticsService{
		db:    p.DB,
		cache: p.Cache,
		clock: p.Clock,
		repo:  p.Repo,
		log:   p.Logger.Named("analytics.service"),
	}
}

func (s *analyticsService) ViewsByDay(ctx context.Context, q domain.Query) ([]domain.DayCount, error) {
	loc, err := s.validate(q)
	if err != nil {
		return nil, err
	}

	return cache.Fetch(ctx, s.cache, "analytics.views_by_day", q,
		[]cache.Tag{
			cache.UserTag(q.OwnerID, cache.KindProductViews),
			productScopeTag(q),
		},
		func(ctx context.Context) ([]domain.DayCount, error) {
			now := s.clock.Now(ctx).In(loc)
			start := bucketStart(now.AddDate(0, 0, -q.Interval.Days()), q.Interval.ByMonth())

			times, err := s.repo.ListVisitTimes(ctx, s.db, q.OwnerID, q.ProductID, start)
			if err != nil {
				return nil, err
			}

			// Visits convert to the query timezone before truncation, so a
			// 23:30 visit in UTC lands on the right local day.
			counts := map[time.Time]int64{}
			for _, t := range times {
				counts[bucketStart(t.In(loc), q.Interval.ByMonth())]++
			}

			end := bucketStart(now, q.Interval.ByMonth())
			var series []domain.DayCount
			for b := start; !b.After(end); b = nextBucket(b, q.Interval.ByMonth()) {
				series = append(series, domain.DayCount{Date: b, Views: counts[b]})
			}
			return series, nil
		})
}

func (s *analyticsService) ViewsByCountry(ctx context.Context, q domain.Query) ([]domain.CountryCount, error) {
	loc, err := s.validate(q)
	if err != nil {
		return nil, err
	}

	return cache.Fetch(ctx, s.cache, "analytics.views_by_country", q,
		[]cache.Tag{
			cache.UserTag(q.OwnerID, cache.KindProductViews),
			productScopeTag(q),
			cache.GlobalTag(cache.KindCountries),
		},
		func(ctx context.Context) ([]domain.CountryCount, error) {
			since := windowStart(s.clock.Now(ctx).In(loc), q.Interval)
			return s.repo.CountByCountry(ctx, s.db, q.OwnerID, q.ProductID, since, topCountriesLimit)
		})
}

func (s *analyticsService) ViewsByPPPGroup(ctx context.Context, q domain.Query) ([]domain.GroupCount, error) {
	loc, err := s.validate(q)
	if err != nil {
		return nil, err
	}

	return cache.Fetch(ctx, s.cache, "analytics.views_by_group", q,
		[]cache.Tag{
			cache.UserTag(q.OwnerID, cache.KindProductViews),
			productScopeTag(q),
			cache.GlobalTag(cache.KindCountries),
			cache.GlobalTag(cache.KindCountryGroups),
		},
		func(ctx context.Context) ([]domain.GroupCount, error) {
			since := windowStart(s.clock.Now(ctx).In(loc), q.Interval)
			return s.repo.CountByGroup(ctx, s.db, q.OwnerID, q.ProductID, since)
		})
}

func (s *analyticsService) validate(q domain.Query) (*time.Location, error) {
	if !q.Interval.Valid() {
		return nil, domain.ErrInvalidInterval
	}
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return nil, domain.ErrInvalidTimezone
	}
	return loc, nil
}

// productScopeTag covers product deletion, which cascades to views: an
// unscoped query keys on the owner's products, a scoped one on the product.
func productScopeTag(q domain.Query) cache.Tag {
	if q.ProductID != nil {
		return cache.IDTag(*q.ProductID, cache.KindProducts)
	}
	return cache.UserTag(q.OwnerID, cache.KindProducts)
}

func windowStart(now time.Time, interval domain.Interval) time.Time {
	return bucketStart(now.AddDate(0, 0, -interval.Days()), interval.ByMonth())
}

func bucketStart(t time.Time, byMonth bool) time.Time {
	if byMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func nextBucket(t time.Time, byMonth bool) time.Time {
	if byMonth {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}
