package service

import (
	"context"
	"encoding/base64"
	"strconv"
	"testing"
	"time"

	"github.com/fairpricelabs/fairprice/internal/clock"
	"github.com/fairpricelabs/fairprice/internal/config"
	"github.com/fairpricelabs/fairprice/internal/identity/domain"
	productdomain "github.com/fairpricelabs/fairprice/internal/product/domain"
	subscriptiondomain "github.com/fairpricelabs/fairprice/internal/subscription/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	webhookNow    = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	webhookSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("test-signing-key"))
)

type recordingSubs struct {
	subscriptiondomain.Service

	created []string
	deleted []string
}

func (r *recordingSubs) Create(_ context.Context, ownerID string, tier subscriptiondomain.TierName) error {
	r.created = append(r.created, ownerID+":"+string(tier))
	return nil
}

func (r *recordingSubs) DeleteForOwner(_ context.Context, ownerID string) error {
	r.deleted = append(r.deleted, ownerID)
	return nil
}

type recordingProducts struct {
	productdomain.Service

	deletedOwners []string
}

func (r *recordingProducts) DeleteAllForOwner(_ context.Context, ownerID string) error {
	r.deletedOwners = append(r.deletedOwners, ownerID)
	return nil
}

func newWebhookService(t *testing.T) (domain.WebhookService, *recordingSubs, *recordingProducts) {
	t.Helper()

	subs := &recordingSubs{}
	products := &recordingProducts{}
	svc, err := NewWebhookService(WebhookParams{
		Config: config.Config{Identity: config.IdentityConfig{
			WebhookSecret: webhookSecret,
			Tolerance:     5 * time.Minute,
		}},
		Clock:         clock.Fixed{T: webhookNow},
		Subscriptions: subs,
		Products:      products,
		Logger:        zap.NewNop(),
	})
	require.NoError(t, err)
	return svc, subs, products
}

func signedHeaders(t *testing.T, payload []byte) domain.WebhookHeaders {
	t.Helper()
	ts := strconv.FormatInt(webhookNow.Unix(), 10)
	sig, err := SignWebhook(webhookSecret, "msg_1", ts, payload)
	require.NoError(t, err)
	return domain.WebhookHeaders{ID: "msg_1", Timestamp: ts, Signature: sig}
}

func TestUserCreatedProvisionsFreeSubscription(t *testing.T) {
	svc, subs, _ := newWebhookService(t)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)

	require.NoError(t, svc.HandleEvent(context.Background(), payload, signedHeaders(t, payload)))
	assert.Equal(t, []string{"user_1:Free"}, subs.created)
}

func TestUserDeletedRemovesOwnerData(t *testing.T) {
	svc, subs, products := newWebhookService(t)
	payload := []byte(`{"type":"user.deleted","data":{"id":"user_1"}}`)

	require.NoError(t, svc.HandleEvent(context.Background(), payload, signedHeaders(t, payload)))
	assert.Equal(t, []string{"user_1"}, products.deletedOwners)
	assert.Equal(t, []string{"user_1"}, subs.deleted)
}

func TestUnknownEventIsAcknowledged(t *testing.T) {
	svc, subs, products := newWebhookService(t)
	payload := []byte(`{"type":"session.created","data":{"id":"user_1"}}`)

	require.NoError(t, svc.HandleEvent(context.Background(), payload, signedHeaders(t, payload)))
	assert.Empty(t, subs.created)
	assert.Empty(t, products.deletedOwners)
}

func TestRejectsBadSignatureWithoutSideEffects(t *testing.T) {
	svc, subs, products := newWebhookService(t)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)

	headers := signedHeaders(t, payload)
	headers.Signature = "v1," + base64.StdEncoding.EncodeToString([]byte("forged-signature-value"))

	err := svc.HandleEvent(context.Background(), payload, headers)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	assert.Empty(t, subs.created)
	assert.Empty(t, products.deletedOwners)
}

func TestRejectsTamperedPayload(t *testing.T) {
	svc, subs, _ := newWebhookService(t)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	headers := signedHeaders(t, payload)

	tampered := []byte(`{"type":"user.created","data":{"id":"user_evil"}}`)
	err := svc.HandleEvent(context.Background(), tampered, headers)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	assert.Empty(t, subs.created)
}

func TestRejectsStaleTimestamp(t *testing.T) {
	svc, _, _ := newWebhookService(t)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)

	stale := strconv.FormatInt(webhookNow.Add(-time.Hour).Unix(), 10)
	sig, err := SignWebhook(webhookSecret, "msg_1", stale, payload)
	require.NoError(t, err)

	err = svc.HandleEvent(context.Background(), payload, domain.WebhookHeaders{
		ID: "msg_1", Timestamp: stale, Signature: sig,
	})
	assert.ErrorIs(t, err, domain.ErrStaleTimestamp)
}

func TestAcceptsAnyMatchingSignatureInList(t *testing.T) {
	svc, subs, _ := newWebhookService(t)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)

	headers := signedHeaders(t, payload)
	headers.Signature = "v1,bm90LXZhbGlk " + headers.Signature

	require.NoError(t, svc.HandleEvent(context.Background(), payload, headers))
	assert.Len(t, subs.created, 1)
}
