package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/fairpricelabs/fairprice/internal/billing/domain"
	"github.com/fairpricelabs/fairprice/internal/cache"
	"github.com/fairpricelabs/fairprice/internal/clock"
	"github.com/fairpricelabs/fairprice/internal/config"
	"github.com/fairpricelabs/fairprice/internal/subscription/domain"
	"github.com/fairpricelabs/fairprice/internal/subscription/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type mockBilling struct {
	mock.Mock
}

func (m *mockBilling) CreateCheckoutSession(ctx context.Context, params billingdomain.CheckoutParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func (m *mockBilling) CreatePortalSession(ctx context.Context, customerRef, returnURL string) (string, error) {
	args := m.Called(ctx, customerRef, returnURL)
	return args.String(0), args.Error(1)
}

func (m *mockBilling) CreateUpgradeSession(ctx context.Context, customerRef, subscriptionRef, itemRef, priceRef, returnURL string) (string, error) {
	args := m.Called(ctx, customerRef, subscriptionRef, itemRef, priceRef, returnURL)
	return args.String(0), args.Error(1)
}

func (m *mockBilling) CancelSubscription(ctx context.Context, subscriptionRef string) error {
	return m.Called(ctx, subscriptionRef).Error(0)
}

func (m *mockBilling) GetSubscription(ctx context.Context, subscriptionRef string) (*billingdomain.SubscriptionState, error) {
	args := m.Called(ctx, subscriptionRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingdomain.SubscriptionState), args.Error(1)
}

type stubViews struct {
	count int64
	err   error
}

func (s *stubViews) CountSince(context.Context, string, time.Time) (int64, error) {
	return s.count, s.err
}

func testConfig() config.Config {
	return config.Config{
		Billing: config.BillingConfig{
			ReturnURL:        "https://app.example.com/subscription",
			BasicPriceRef:    "price_basic",
			StandardPriceRef: "price_standard",
			PremiumPriceRef:  "price_premium",
		},
	}
}

func newTestService(t *testing.T) (domain.Service, *mockBilling, *stubViews, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.UserSubscription{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	billing := &mockBilling{}
	views := &stubViews{}

	svc := NewSubscriptionService(Params{
		DB:      db,
		Cache:   cache.New(cache.NewMemoryBackend(), zap.NewNop(), cache.NewMetrics(nil)),
		Clock:   clock.Fixed{T: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)},
		Node:    node,
		Repo:    repository.NewSubscriptionRepository(),
		Views:   views,
		Billing: billing,
		Config:  testConfig(),
		Logger:  zap.NewNop(),
	})
	return svc, billing, views, db
}

func TestCreateIsIdempotent(t *testing.T) {
	svc, _, _, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, "user_1", domain.TierFree))
	require.NoError(t, svc.Create(ctx, "user_1", domain.TierFree))

	var count int64
	require.NoError(t, db.Model(&domain.UserSubscription{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	sub, err := svc.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, sub.Tier)
}

func TestCreateRejectsUnknownTier(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	err := svc.Create(context.Background(), "user_1", domain.TierName("Platinum"))
	assert.ErrorIs(t, err, domain.ErrUnknownTier)
}

func TestGetMissingOwner(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActivateBillingUpdatesTierAndBustsCache(t *testing.T) {
	svc, _, _, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, "user_1", domain.TierFree))
	cust := "cus_123"
	require.NoError(t, db.Model(&domain.UserSubscription{}).
		Where("owner_id = ?", "user_1").
		Update("billing_customer_ref", cust).Error)

	// Prime the cache with the Free row.
	tier, err := svc.GetTier(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, tier.Name)

	require.NoError(t, svc.ActivateBilling(ctx, domain.BillingRefs{
		CustomerRef:         cust,
		SubscriptionRef:     "sub_123",
		SubscriptionItemRef: "si_123",
	}, domain.TierStandard))

	tier, err = svc.GetTier(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, domain.TierStandard, tier.Name)
	assert.True(t, tier.CanCustomizeBanner)
}

func TestDeactivateBillingFallsBackToFree(t *testing.T) {
	svc, _, _, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, "user_1", domain.TierFree))
	cust := "cus_123"
	require.NoError(t, db.Model(&domain.UserSubscription{}).
		Where("owner_id = ?", "user_1").
		Update("billing_customer_ref", cust).Error)
	require.NoError(t, svc.ActivateBilling(ctx, domain.BillingRefs{
		CustomerRef:         cust,
		SubscriptionRef:     "sub_123",
		SubscriptionItemRef: "si_123",
	}, domain.TierPremium))

	require.NoError(t, svc.DeactivateBilling(ctx, cust))

	sub, err := svc.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, sub.Tier)
	assert.Nil(t, sub.BillingSubscriptionRef)
	assert.Nil(t, sub.BillingSubscriptionItemRef)
	// The customer ref survives so a later upgrade reuses it.
	require.NotNil(t, sub.BillingCustomerRef)
	assert.Equal(t, cust, *sub.BillingCustomerRef)
}

func TestDeleteForOwnerCancelsRemoteSubscription(t *testing.T) {
	svc, billing, _, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, "user_1", domain.TierFree))
	cust := "cus_123"
	require.NoError(t, db.Model(&domain.UserSubscription{}).
		Where("owner_id = ?", "user_1").
		Update("billing_customer_ref", cust).Error)
	require.NoError(t, svc.ActivateBilling(ctx, domain.BillingRefs{
		CustomerRef:         cust,
		SubscriptionRef:     "sub_123",
		SubscriptionItemRef: "si_123",
	}, domain.TierBasic))

	billing.On("CancelSubscription", mock.Anything, "sub_123").Return(nil)

	require.NoError(t, svc.DeleteForOwner(ctx, "user_1"))
	billing.AssertExpectations(t)

	_, err := svc.Get(ctx, "user_1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting a missing owner is a no-op.
	require.NoError(t, svc.DeleteForOwner(ctx, "user_1"))
}

func TestCanShowBannerEnforcesMonthlyQuota(t *testing.T) {
	svc, _, views, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, "user_1", domain.TierFree))

	views.count = 4_999
	ok, err := svc.CanShowBanner(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, ok)

	views.count = 5_000
	ok, err = svc.CanShowBanner(ctx, "user_1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCapabilityGatesFollowTier(t *testing.T) {
	svc, _, _, db := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, "user_1", domain.TierFree))

	analytics, err := svc.CanAccessAnalytics(ctx, "user_1")
	require.NoError(t, err)
	assert.False(t, analytics)

	cust := "cus_123"
	require.NoError(t, db.Model(&domain.UserSubscription{}).
		Where("owner_id = ?", "user_1").
		Update("billing_customer_ref", cust).Error)
	require.NoError(t, svc.ActivateBilling(ctx, domain.BillingRefs{
		CustomerRef:         cust,
		SubscriptionRef:     "sub_123",
		SubscriptionItemRef: "si_123",
	}, domain.TierPremium))

	analytics, err = svc.CanAccessAnalytics(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, analytics)

	branding, err := svc.CanRemoveBranding(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, branding)
}

func TestCheckoutURLNewCustomer(t *testing.T) {
	svc, billing, _, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, "user_1", domain.TierFree))

	billing.On("CreateCheckoutSession", mock.Anything, billingdomain.CheckoutParams{
		ClientReferenceID: "user_1",
		PriceRef:          "price_standard",
		SuccessURL:        "https://app.example.com/subscription",
		CancelURL:         "https://app.example.com/subscription",
	}).Return("https://billing.example.com/checkout/cs_1", nil)

	url, err := svc.CheckoutURL(ctx, "user_1", domain.TierStandard)
	require.NoError(t, err)
	assert.Equal(t, "https://billing.example.com/checkout/cs_1", url)
	billing.AssertExpectations(t)
}

func TestCheckoutURLExistingCustomerUpgrades(t *testing.T) {
	svc, billing, _, db := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, "user_1", domain.TierFree))
	cust := "cus_123"
	require.NoError(t, db.Model(&domain.UserSubscription{}).
		Where("owner_id = ?", "user_1").
		Update("billing_customer_ref", cust).Error)
	require.NoError(t, svc.ActivateBilling(ctx, domain.BillingRefs{
		CustomerRef:         cust,
		SubscriptionRef:     "sub_123",
		SubscriptionItemRef: "si_123",
	}, domain.TierBasic))

	billing.On("CreateUpgradeSession", mock.Anything, cust, "sub_123", "si_123",
		"price_premium", "https://app.example.com/subscription").
		Return("https://billing.example.com/portal/ps_1", nil)

	url, err := svc.CheckoutURL(ctx, "user_1", domain.TierPremium)
	require.NoError(t, err)
	assert.Equal(t, "https://billing.example.com/portal/ps_1", url)
	billing.AssertExpectations(t)
}

func TestCheckoutURLFreeTier(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, "user_1", domain.TierFree))

	_, err := svc.CheckoutURL(ctx, "user_1", domain.TierFree)
	assert.ErrorIs(t, err, domain.ErrFreeTierCheckout)
}

func TestPortalURLRequiresBillingCustomer(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, "user_1", domain.TierFree))

	_, err := svc.PortalURL(ctx, "user_1")
	assert.ErrorIs(t, err, domain.ErrNoBillingCustomer)
}

func TestTierByPriceRef(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	tier, ok := svc.TierByPriceRef("price_basic")
	require.True(t, ok)
	assert.Equal(t, domain.TierBasic, tier.Name)

	_, ok = svc.TierByPriceRef("")
	assert.False(t, ok)

	_, ok = svc.TierByPriceRef("price_unknown")
	assert.False(t, ok)
}
