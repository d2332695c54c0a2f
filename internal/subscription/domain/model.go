package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type TierName string

const (
	TierFree     TierName = "Free"
	TierBasic    TierName = "Basic"
	TierStandard TierName = "Standard"
	TierPremium  TierName = "Premium"
)

// Tier bundles the quota and capability flags of one subscription plan.
// The table is static configuration; only PriceRef comes from the
// environment (it names the billing provider's price object).
type Tier struct {
	Name               TierName `json:"name"`
	PriceCents         int      `json:"price_cents"`
	MaxProducts        int      `json:"max_products"`
	MaxMonthlyViews    int64    `json:"max_monthly_views"`
	CanAccessAnalytics bool     `json:"can_access_analytics"`
	CanCustomizeBanner bool     `json:"can_customize_banner"`
	CanRemoveBranding  bool     `json:"can_remove_branding"`
	PriceRef           string   `json:"-"`
}

// UserSubscription is the one-per-owner row linking a tenant to its tier
// and billing provider objects.
type UserSubscription struct {
	ID                         snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	OwnerID                    string       `gorm:"column:owner_id;uniqueIndex" json:"owner_id"`
	Tier                       TierName     `gorm:"column:tier" json:"tier"`
	BillingCustomerRef         *string      `gorm:"column:billing_customer_ref" json:"-"`
	BillingSubscriptionRef     *string      `gorm:"column:billing_subscription_ref" json:"-"`
	BillingSubscriptionItemRef *string      `gorm:"column:billing_subscription_item_ref" json:"-"`
	CreatedAt                  time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt                  time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (UserSubscription) TableName() string { return "user_subscriptions" }

// BillingRefs carries the provider-side identifiers delivered by billing
// webhook events.
type BillingRefs struct {
	CustomerRef         string
	SubscriptionRef     string
	SubscriptionItemRef string
}

type Repository interface {
	// Insert creates the owner's subscription unless one exists
	// (ON CONFLICT DO NOTHING). Reports whether a row was written.
	Insert(ctx context.Context, db *gorm.DB, sub *UserSubscription) (bool, error)
	FindByOwner(ctx context.Context, db *gorm.DB, ownerID string) (*UserSubscription, error)
	FindByCustomerRef(ctx context.Context, db *gorm.DB, customerRef string) (*UserSubscription, error)
	Update(ctx context.Context, db *gorm.DB, sub *UserSubscription) (int64, error)
	// DeleteByOwner removes the owner's subscription and returns the
	// deleted row, or nil when none existed.
	DeleteByOwner(ctx context.Context, db *gorm.DB, ownerID string) (*UserSubscription, error)
}

type Service interface {
	Get(ctx context.Context, ownerID string) (*UserSubscription, error)
	GetTier(ctx context.Context, ownerID string) (Tier, error)
	Create(ctx context.Context, ownerID string, tier TierName) error
	// ActivateBilling applies a billing "subscription created/updated"
	// event addressed by customer ref.
	ActivateBilling(ctx context.Context, refs BillingRefs, tier TierName) error
	// DeactivateBilling handles "subscription deleted": back to Free, refs
	// cleared.
	DeactivateBilling(ctx context.Context, customerRef string) error
	DeleteForOwner(ctx context.Context, ownerID string) error

	TierByName(name TierName) (Tier, bool)
	TierByPriceRef(priceRef string) (Tier, bool)
	Tiers() []Tier

	CanAccessAnalytics(ctx context.Context, ownerID string) (bool, error)
	CanCustomizeBanner(ctx context.Context, ownerID string) (bool, error)
	CanRemoveBranding(ctx context.Context, ownerID string) (bool, error)
	// CanShowBanner reports whether the owner's current-month view count is
	// still under the tier quota.
	CanShowBanner(ctx context.Context, ownerID string) (bool, error)

	// CheckoutURL starts a checkout for first-time subscribers and an
	// upgrade confirmation for owners that already have a billing customer.
	CheckoutURL(ctx context.Context, ownerID string, tier TierName) (string, error)
	PortalURL(ctx context.Context, ownerID string) (string, error)
}

// ViewCounter is the slice of the view context the quota gate needs.
type ViewCounter interface {
	CountSince(ctx context.Context, ownerID string, since time.Time) (int64, error)
}

var (
	ErrNotFound          = errors.New("subscription_not_found")
	ErrUnknownTier       = errors.New("unknown_tier")
	ErrFreeTierCheckout  = errors.New("free_tier_has_no_checkout")
	ErrNoBillingCustomer = errors.New("no_billing_customer")
)
