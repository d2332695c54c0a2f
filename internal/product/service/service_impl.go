package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/fairpricelabs/fairprice/internal/cache"
	"github.com/fairpricelabs/fairprice/internal/clock"
	"github.com/fairpricelabs/fairprice/internal/product/domain"
	subscriptiondomain "github.com/fairpricelabs/fairprice/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Default banner presentation for newly created products. Placeholders are
// substituted when the banner is resolved.
const (
	defaultLocationMessage = `Hey! It looks like you are from <b>{country}</b>. We support Parity Purchasing Power, so if you need it, use code <b>"{coupon}"</b> at checkout to get <b>{discount}%</b> off.`
	defaultBackgroundColor = "hsl(193, 82%, 31%)"
	defaultTextColor       = "hsl(0, 0%, 100%)"
	defaultFontSize        = "1rem"
	defaultBannerContainer = "body"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Cache         *cache.Cache
	Clock         clock.Clock
	Node          *snowflake.Node
	Repo          domain.Repository
	Subscriptions subscriptiondomain.Service
	Logger        *zap.Logger
}

type productService struct {
	db    *gorm.DB
	cache *cache.Cache
	clock clock.Clock
	node  *snowflake.Node
	repo  domain.Repository
	subs  subscriptiondomain.Service
	log   *zap.Logger
}

func NewProductService(p Params) domain.Service {
	return &productService{
		db:    p.DB,
		cache: p.Cache,
		clock: p.Clock,
		node:  p.Node,
		repo:  p.Repo,
		subs:  p.Subscriptions,
		log:   p.Logger.Named("product.service"),
	}
}

func (s *productService) List(ctx context.Context, ownerID string) ([]domain.Product, error) {
	return cache.Fetch(ctx, s.cache, "products.list", ownerID,
		[]cache.Tag{cache.UserTag(ownerID, cache.KindProducts)},
		func(ctx context.Context) ([]domain.Product, error) {
			return s.repo.ListByOwner(ctx, s.db, ownerID)
		})
}

func (s *productService) Get(ctx context.Context, ownerID string, id snowflake.ID) (*domain.Product, error) {
	type args struct {
		OwnerID string       `json:"owner_id"`
		ID      snowflake.ID `json:"id"`
	}
	return cache.Fetch(ctx, s.cache, "products.get", args{OwnerID: ownerID, ID: id},
		[]cache.Tag{cache.IDTag(id, cache.KindProducts)},
		func(ctx context.Context) (*domain.Product, error) {
			return s.repo.FindByIDAndOwner(ctx, s.db, ownerID, id)
		})
}

func (s *productService) Count(ctx context.Context, ownerID string) (int64, error) {
	return cache.Fetch(ctx, s.cache, "products.count", ownerID,
		[]cache.Tag{cache.UserTag(ownerID, cache.KindProducts)},
		func(ctx context.Context) (int64, error) {
			return s.repo.CountByOwner(ctx, s.db, ownerID)
		})
}

// Create inserts the product together with its default customization in one
// transaction, after checking the owner's tier quota. The quota check is
// advisory under concurrency; the per-tier limits are soft limits.
func (s *productService) Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	tier, err := s.subs.GetTier(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	count, err := s.Count(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if count >= int64(tier.MaxProducts) {
		return nil, domain.ErrQuotaExceeded
	}

	now := s.clock.Now(ctx)
	product := &domain.Product{
		ID:          s.node.Generate(),
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	customization := &domain.ProductCustomization{
		ID:              s.node.Generate(),
		ProductID:       product.ID,
		LocationMessage: defaultLocationMessage,
		BackgroundColor: defaultBackgroundColor,
		TextColor:       defaultTextColor,
		FontSize:        defaultFontSize,
		BannerContainer: defaultBannerContainer,
		IsSticky:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, product); err != nil {
			return err
		}
		return s.repo.CreateCustomization(ctx, tx, customization)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateScopes(ctx, cache.KindProducts, req.OwnerID, product.ID)
	return product, nil
}

func (s *productService) Update(ctx context.Context, req domain.UpdateProductRequest) (*domain.Product, error) {
	product := &domain.Product{
		ID:          req.ID,
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		UpdatedAt:   s.clock.Now(ctx),
	}

	rows, err := s.repo.Update(ctx, s.db, product)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Nothing matched, nothing changed, nothing to invalidate.
		return nil, domain.ErrNotFound
	}

	s.cache.InvalidateScopes(ctx, cache.KindProducts, req.OwnerID, req.ID)
	return s.repo.FindByIDAndOwner(ctx, s.db, req.OwnerID, req.ID)
}

func (s *productService) Delete(ctx context.Context, ownerID string, id snowflake.ID) error {
	rows, err := s.repo.Delete(ctx, s.db, ownerID, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	s.cache.InvalidateScopes(ctx, cache.KindProducts, ownerID, id)
	return nil
}

func (s *productService) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	ids, err := s.repo.ListIDsByOwner(ctx, s.db, ownerID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteAllByOwner(ctx, s.db, ownerID); err != nil {
		return err
	}

	for _, id := range ids {
		s.cache.InvalidateScopes(ctx, cache.KindProducts, ownerID, id)
	}
	if len(ids) == 0 {
		s.cache.InvalidateScopes(ctx, cache.KindProducts, ownerID, 0)
	}
	return nil
}

func (s *productService) GetCustomization(ctx context.Context, ownerID string, productID snowflake.ID) (*domain.ProductCustomization, error) {
	// Ownership first; the customization row itself is keyed by product.
	if _, err := s.Get(ctx, ownerID, productID); err != nil {
		return nil, err
	}

	return cache.Fetch(ctx, s.cache, "products.customization", productID,
		[]cache.Tag{cache.IDTag(productID, cache.KindProducts)},
		func(ctx context.Context) (*domain.ProductCustomization, error) {
			return s.repo.FindCustomizationByProduct(ctx, s.db, productID)
		})
}

func (s *productService) UpdateCustomization(ctx context.Context, req domain.UpdateCustomizationRequest) (*domain.ProductCustomization, error) {
	allowed, err := s.subs.CanCustomizeBanner(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrPermissionDenied
	}

	if _, err := s.Get(ctx, req.OwnerID, req.ProductID); err != nil {
		return nil, err
	}

	c := &domain.ProductCustomization{
		ProductID:       req.ProductID,
		LocationMessage: req.LocationMessage,
		BackgroundColor: req.BackgroundColor,
		TextColor:       req.TextColor,
		FontSize:        req.FontSize,
		BannerContainer: req.BannerContainer,
		IsSticky:        req.IsSticky,
		ClassPrefix:     req.ClassPrefix,
		UpdatedAt:       s.clock.Now(ctx),
	}

	rows, err := s.repo.UpdateCustomization(ctx, s.db, c)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}

	s.cache.InvalidateScopes(ctx, cache.KindProducts, req.OwnerID, req.ProductID)
	return s.repo.FindCustomizationByProduct(ctx, s.db, req.ProductID)
}
