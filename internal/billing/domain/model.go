package domain

import (
	"context"
	"errors"
)

// SubscriptionState mirrors the provider-side subscription object, reduced
// to the fields tier resolution needs.
type SubscriptionState struct {
	CustomerRef         string
	SubscriptionRef     string
	SubscriptionItemRef string
	PriceRef            string
	Status              string
}

// CheckoutParams describes a first-time checkout session.
type CheckoutParams struct {
	CustomerEmail     string
	ClientReferenceID string
	PriceRef          string
	SuccessURL        string
	CancelURL         string
}

// Provider is the outbound billing API surface. Session methods return the
// hosted URL the client should be redirected to.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)
	CreatePortalSession(ctx context.Context, customerRef, returnURL string) (string, error)
	// CreateUpgradeSession opens a portal flow preselected to confirm a
	// price change on an existing subscription item.
	CreateUpgradeSession(ctx context.Context, customerRef, subscriptionRef, itemRef, priceRef, returnURL string) (string, error)
	CancelSubscription(ctx context.Context, subscriptionRef string) error
	GetSubscription(ctx context.Context, subscriptionRef string) (*SubscriptionState, error)
}

// Event is a verified billing webhook event.
type Event struct {
	ID   string
	Type string
	Data []byte
}

// WebhookService verifies and applies billing provider events.
type WebhookService interface {
	HandleEvent(ctx context.Context, payload []byte, signatureHeader string) error
}

var (
	ErrUpstream         = errors.New("billing_upstream_unavailable")
	ErrInvalidSignature = errors.New("invalid_webhook_signature")
)
