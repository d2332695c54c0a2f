package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fairpricelabs/fairprice/internal/cache"
	"github.com/fairpricelabs/fairprice/internal/clock"
	"github.com/fairpricelabs/fairprice/internal/view/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Cache  *cache.Cache
	Clock  clock.Clock
	Node   *snowflake.Node
	Repo   domain.Repository
	Logger *zap.Logger
}

type viewService struct {
	db    *gorm.DB
	cache *cache.Cache
	clock clock.Clock
	node  *snowflake.Node
	repo  domain.Repository
	log   *zap.Logger
}

func NewViewService(p Params) domain.Service {
	return &viewService{
		db:    p.DB,
		cache: p.Cache,
		clock: p.Clock,
		node:  p.Node,
		repo:  p.Repo,
		log:   p.Logger.Named("view.service"),
	}
}

func (s *viewService) Record(ctx context.Context, req domain.RecordRequest) error {
	err := s.repo.Insert(ctx, s.db, &domain.ProductView{
		ID:        s.node.Generate(),
		ProductID: req.ProductID,
		CountryID: req.CountryID,
		VisitedAt: s.clock.Now(ctx),
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateScopes(ctx, cache.KindProductViews, req.OwnerID, req.ProductID)
	return nil
}

func (s *viewService) CountSince(ctx context.Context, ownerID string, since time.Time) (int64, error) {
	type args struct {
		OwnerID string    `json:"owner_id"`
		Since   time.Time `json:"since"`
	}
	// Product deletion cascades to views, so the count also keys on the
	// owner's product scope.
	return cache.Fetch(ctx, s.cache, "views.count_since", args{OwnerID: ownerID, Since: since.UTC()},
		[]cache.Tag{
			cache.UserTag(ownerID, cache.KindProductViews),
			cache.UserTag(ownerID, cache.KindProducts),
		},
		func(ctx context.Context) (int64, error) {
			return s.repo.CountByOwnerSince(ctx, s.db, ownerID, since)
		})
}
