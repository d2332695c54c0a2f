package service

import (
	"context"
	"testing"
	"time"

	"github.com/fairpricelabs/fairprice/internal/billing/domain"
	"github.com/fairpricelabs/fairprice/internal/clock"
	"github.com/fairpricelabs/fairprice/internal/config"
	subscriptiondomain "github.com/fairpricelabs/fairprice/internal/subscription/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var webhookNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

const signingSecret = "whsec_test_secret"

type recordingSubs struct {
	subscriptiondomain.Service

	activated   []subscriptiondomain.BillingRefs
	tiers       []subscriptiondomain.TierName
	deactivated []string
}

func (r *recordingSubs) TierByPriceRef(priceRef string) (subscriptiondomain.Tier, bool) {
	switch priceRef {
	case "price_basic":
		return subscriptiondomain.Tier{Name: subscriptiondomain.TierBasic, PriceRef: priceRef}, true
	case "price_premium":
		return subscriptiondomain.Tier{Name: subscriptiondomain.TierPremium, PriceRef: priceRef}, true
	}
	return subscriptiondomain.Tier{}, false
}

func (r *recordingSubs) ActivateBilling(_ context.Context, refs subscriptiondomain.BillingRefs, tier subscriptiondomain.TierName) error {
	r.activated = append(r.activated, refs)
	r.tiers = append(r.tiers, tier)
	return nil
}

func (r *recordingSubs) DeactivateBilling(_ context.Context, customerRef string) error {
	r.deactivated = append(r.deactivated, customerRef)
	return nil
}

func newWebhookService(t *testing.T) (domain.WebhookService, *recordingSubs) {
	t.Helper()
	subs := &recordingSubs{}
	svc := NewWebhookService(WebhookParams{
		Config: config.Config{Billing: config.BillingConfig{
			WebhookSecret: signingSecret,
			Tolerance:     5 * time.Minute,
		}},
		Clock:         clock.Fixed{T: webhookNow},
		Subscriptions: subs,
		Logger:        zap.NewNop(),
	})
	return svc, subs
}

const subscriptionCreated = `{
	"id": "evt_1",
	"type": "customer.subscription.created",
	"data": {"object": {
		"id": "sub_1",
		"customer": "cus_1",
		"status": "active",
		"items": {"data": [{"id": "si_1", "price": {"id": "price_basic"}}]}
	}}
}`

func TestSubscriptionCreatedActivatesTier(t *testing.T) {
	svc, subs := newWebhookService(t)
	payload := []byte(subscriptionCreated)
	header := SignPayload(signingSecret, webhookNow.Unix(), payload)

	require.NoError(t, svc.HandleEvent(context.Background(), payload, header))
	require.Len(t, subs.activated, 1)
	assert.Equal(t, subscriptiondomain.BillingRefs{
		CustomerRef:         "cus_1",
		SubscriptionRef:     "sub_1",
		SubscriptionItemRef: "si_1",
	}, subs.activated[0])
	assert.Equal(t, subscriptiondomain.TierBasic, subs.tiers[0])
}

func TestSubscriptionDeletedDeactivates(t *testing.T) {
	svc, subs := newWebhookService(t)
	payload := []byte(`{
		"id": "evt_2",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_1", "customer": "cus_1", "status": "canceled"}}
	}`)
	header := SignPayload(signingSecret, webhookNow.Unix(), payload)

	require.NoError(t, svc.HandleEvent(context.Background(), payload, header))
	assert.Equal(t, []string{"cus_1"}, subs.deactivated)
}

func TestUnknownPriceIsAnError(t *testing.T) {
	svc, subs := newWebhookService(t)
	payload := []byte(`{
		"id": "evt_3",
		"type": "customer.subscription.updated",
		"data": {"object": {
			"id": "sub_1",
			"customer": "cus_1",
			"items": {"data": [{"id": "si_1", "price": {"id": "price_mystery"}}]}
		}}
	}`)
	header := SignPayload(signingSecret, webhookNow.Unix(), payload)

	err := svc.HandleEvent(context.Background(), payload, header)
	assert.Error(t, err)
	assert.Empty(t, subs.activated)
}

func TestIrrelevantEventIsAcknowledged(t *testing.T) {
	svc, subs := newWebhookService(t)
	payload := []byte(`{"id": "evt_4", "type": "invoice.paid", "data": {"object": {}}}`)
	header := SignPayload(signingSecret, webhookNow.Unix(), payload)

	require.NoError(t, svc.HandleEvent(context.Background(), payload, header))
	assert.Empty(t, subs.activated)
	assert.Empty(t, subs.deactivated)
}

func TestRejectsBadSignature(t *testing.T) {
	svc, subs := newWebhookService(t)
	payload := []byte(subscriptionCreated)
	header := SignPayload("whsec_other_secret", webhookNow.Unix(), payload)

	err := svc.HandleEvent(context.Background(), payload, header)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	assert.Empty(t, subs.activated)
}

func TestRejectsStaleTimestamp(t *testing.T) {
	svc, _ := newWebhookService(t)
	payload := []byte(subscriptionCreated)
	header := SignPayload(signingSecret, webhookNow.Add(-time.Hour).Unix(), payload)

	err := svc.HandleEvent(context.Background(), payload, header)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestRejectsMalformedHeader(t *testing.T) {
	svc, _ := newWebhookService(t)
	payload := []byte(subscriptionCreated)

	for _, header := range []string{"", "t=123", "v1=abc", "nonsense"} {
		err := svc.HandleEvent(context.Background(), payload, header)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature, "header %q", header)
	}
}
