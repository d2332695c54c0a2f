package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/fairpricelabs/fairprice/internal/billing/domain"
	"github.com/fairpricelabs/fairprice/internal/cache"
	"github.com/fairpricelabs/fairprice/internal/clock"
	"github.com/fairpricelabs/fairprice/internal/config"
	"github.com/fairpricelabs/fairprice/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Cache   *cache.Cache
	Clock   clock.Clock
	Node    *snowflake.Node
	Repo    domain.Repository
	Views   domain.ViewCounter
	Billing billingdomain.Provider
	Config  config.Config
	Logger  *zap.Logger
}

type subscriptionService struct {
	db      *gorm.DB
	cache   *cache.Cache
	clock   clock.Clock
	node    *snowflake.Node
	repo    domain.Repository
	views   domain.ViewCounter
	billing billingdomain.Provider
	cfg     config.Config
	tiers   []domain.Tier
	log     *zap.Logger
}

func NewSubscriptionService(p Params) domain.Service {
	return &subscriptionService{
		db:      p.DB,
		cache:   p.Cache,
		clock:   p.Clock,
		node:    p.Node,
		repo:    p.Repo,
		views:   p.Views,
		billing: p.Billing,
		cfg:     p.Config,
		tiers:   tierTable(p.Config.Billing),
		log:     p.Logger.Named("subscription.service"),
	}
}

// tierTable binds the static plan catalog to the configured provider
// prices. Free has no price ref.
func tierTable(b config.BillingConfig) []domain.Tier {
	return []domain.Tier{
		{
			Name:            domain.TierFree,
			PriceCents:      0,
			MaxProducts:     1,
			MaxMonthlyViews: 5_000,
		},
		{
			Name:               domain.TierBasic,
			PriceCents:         1_900,
			MaxProducts:        5,
			MaxMonthlyViews:    10_000,
			CanAccessAnalytics: true,
			PriceRef:           b.BasicPriceRef,
		},
		{
			Name:               domain.TierStandard,
			PriceCents:         4_900,
			MaxProducts:        30,
			MaxMonthlyViews:    100_000,
			CanAccessAnalytics: true,
			CanCustomizeBanner: true,
			PriceRef:           b.StandardPriceRef,
		},
		{
			Name:               domain.TierPremium,
			PriceCents:         9_900,
			MaxProducts:        50,
			MaxMonthlyViews:    1_000_000,
			CanAccessAnalytics: true,
			CanCustomizeBanner: true,
			CanRemoveBranding:  true,
			PriceRef:           b.PremiumPriceRef,
		},
	}
}

func (s *subscriptionService) Get(ctx context.Context, ownerID string) (*domain.UserSubscription, error) {
	return cache.Fetch(ctx, s.cache, "subscription.get", ownerID,
		[]cache.Tag{cache.UserTag(ownerID, cache.KindSubscription)},
		func(ctx context.Context) (*domain.UserSubscription, error) {
			return s.repo.FindByOwner(ctx, s.db, ownerID)
		})
}

func (s *subscriptionService) GetTier(ctx context.Context, ownerID string) (domain.Tier, error) {
	sub, err := s.Get(ctx, ownerID)
	if err != nil {
		return domain.Tier{}, err
	}
	tier, ok := s.TierByName(sub.Tier)
	if !ok {
		return domain.Tier{}, domain.ErrUnknownTier
	}
	return tier, nil
}

func (s *subscriptionService) Create(ctx context.Context, ownerID string, tier domain.TierName) error {
	if _, ok := s.TierByName(tier); !ok {
		return domain.ErrUnknownTier
	}

	now := s.clock.Now(ctx)
	inserted, err := s.repo.Insert(ctx, s.db, &domain.UserSubscription{
		ID:        s.node.Generate(),
		OwnerID:   ownerID,
		Tier:      tier,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}
	if !inserted {
		// Duplicate delivery of the same signup event.
		s.log.Debug("subscription already exists", zap.String("owner_id", ownerID))
		return nil
	}

	s.cache.InvalidateScopes(ctx, cache.KindSubscription, ownerID, 0)
	return nil
}

func (s *subscriptionService) ActivateBilling(ctx context.Context, refs domain.BillingRefs, tier domain.TierName) error {
	if _, ok := s.TierByName(tier); !ok {
		return domain.ErrUnknownTier
	}

	sub, err := s.repo.FindByCustomerRef(ctx, s.db, refs.CustomerRef)
	if err != nil {
		return err
	}

	sub.Tier = tier
	sub.BillingCustomerRef = &refs.CustomerRef
	sub.BillingSubscriptionRef = &refs.SubscriptionRef
	sub.BillingSubscriptionItemRef = &refs.SubscriptionItemRef
	sub.UpdatedAt = s.clock.Now(ctx)

	if _, err := s.repo.Update(ctx, s.db, sub); err != nil {
		return err
	}

	s.cache.InvalidateScopes(ctx, cache.KindSubscription, sub.OwnerID, 0)
	return nil
}

func (s *subscriptionService) DeactivateBilling(ctx context.Context, customerRef string) error {
	sub, err := s.repo.FindByCustomerRef(ctx, s.db, customerRef)
	if err != nil {
		return err
	}

	sub.Tier = domain.TierFree
	sub.BillingSubscriptionRef = nil
	sub.BillingSubscriptionItemRef = nil
	sub.UpdatedAt = s.clock.Now(ctx)

	if _, err := s.repo.Update(ctx, s.db, sub); err != nil {
		return err
	}

	s.cache.InvalidateScopes(ctx, cache.KindSubscription, sub.OwnerID, 0)
	return nil
}

func (s *subscriptionService) DeleteForOwner(ctx context.Context, ownerID string) error {
	deleted, err := s.repo.DeleteByOwner(ctx, s.db, ownerID)
	if err != nil {
		return err
	}
	if deleted == nil {
		return nil
	}

	if deleted.BillingSubscriptionRef != nil {
		if err := s.billing.CancelSubscription(ctx, *deleted.BillingSubscriptionRef); err != nil {
			// The local row is already gone; the provider retries failed
			// cancellations out of band, so log instead of failing the
			// owner deletion.
			s.log.Error("cancel billing subscription",
				zap.String("owner_id", ownerID),
				zap.Error(err))
		}
	}

	s.cache.InvalidateScopes(ctx, cache.KindSubscription, ownerID, 0)
	return nil
}

func (s *subscriptionService) TierByName(name domain.TierName) (domain.Tier, bool) {
	for _, t := range s.tiers {
		if t.Name == name {
			return t, true
		}
	}
	return domain.Tier{}, false
}

func (s *subscriptionService) TierByPriceRef(priceRef string) (domain.Tier, bool) {
	if priceRef == "" {
		return domain.Tier{}, false
	}
	for _, t := range s.tiers {
		if t.PriceRef == priceRef {
			return t, true
		}
	}
	return domain.Tier{}, false
}

func (s *subscriptionService) Tiers() []domain.Tier {
	out := make([]domain.Tier, len(s.tiers))
	copy(out, s.tiers)
	return out
}

func (s *subscriptionService) CanAccessAnalytics(ctx context.Context, ownerID string) (bool, error) {
	tier, err := s.GetTier(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return tier.CanAccessAnalytics, nil
}

func (s *subscriptionService) CanCustomizeBanner(ctx context.Context, ownerID string) (bool, error) {
	tier, err := s.GetTier(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return tier.CanCustomizeBanner, nil
}

func (s *subscriptionService) CanRemoveBranding(ctx context.Context, ownerID string) (bool, error) {
	tier, err := s.GetTier(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return tier.CanRemoveBranding, nil
}

func (s *subscriptionService) CanShowBanner(ctx context.Context, ownerID string) (bool, error) {
	tier, err := s.GetTier(ctx, ownerID)
	if err != nil {
		return false, err
	}

	count, err := s.views.CountSince(ctx, ownerID, startOfMonth(s.clock.Now(ctx)))
	if err != nil {
		return false, err
	}
	return count < tier.MaxMonthlyViews, nil
}

func (s *subscriptionService) CheckoutURL(ctx context.Context, ownerID string, tierName domain.TierName) (string, error) {
	tier, ok := s.TierByName(tierName)
	if !ok {
		return "", domain.ErrUnknownTier
	}
	if tier.PriceRef == "" {
		return "", domain.ErrFreeTierCheckout
	}

	sub, err := s.Get(ctx, ownerID)
	if err != nil {
		return "", err
	}

	returnURL := s.cfg.Billing.ReturnURL
	if sub.BillingCustomerRef == nil {
		return s.billing.CreateCheckoutSession(ctx, billingdomain.CheckoutParams{
			ClientReferenceID: ownerID,
			PriceRef:          tier.PriceRef,
			SuccessURL:        returnURL,
			CancelURL:         returnURL,
		})
	}

	if sub.BillingSubscriptionRef == nil || sub.BillingSubscriptionItemRef == nil {
		return "", domain.ErrNoBillingCustomer
	}
	return s.billing.CreateUpgradeSession(ctx,
		*sub.BillingCustomerRef,
		*sub.BillingSubscriptionRef,
		*sub.BillingSubscriptionItemRef,
		tier.PriceRef,
		returnURL)
}

func (s *subscriptionService) PortalURL(ctx context.Context, ownerID string) (string, error) {
	sub, err := s.Get(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if sub.BillingCustomerRef == nil {
		return "", domain.ErrNoBillingCustomer
	}
	return s.billing.CreatePortalSession(ctx, *sub.BillingCustomerRef, s.cfg.Billing.ReturnURL)
}

func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
