package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/fairpricelabs/fairprice/internal/clock"
	"github.com/fairpricelabs/fairprice/internal/config"
	"github.com/fairpricelabs/fairprice/internal/identity/domain"
	productdomain "github.com/fairpricelabs/fairprice/internal/product/domain"
	subscriptiondomain "github.com/fairpricelabs/fairprice/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const secretPrefix = "whsec_"

type WebhookParams struct {
	fx.In

	Config        config.Config
	Clock         clock.Clock
	Subscriptions subscriptiondomain.Service
	Products      productdomain.Service
	Logger        *zap.Logger
}

type webhookService struct {
	secret    []byte
	tolerance int64
	clock     clock.Clock
	subs      subscriptiondomain.Service
	products  productdomain.Service
	log       *zap.Logger
}

func NewWebhookService(p WebhookParams) (domain.WebhookService, error) {
	secret, err := decodeSecret(p.Config.Identity.WebhookSecret)
	if err != nil {
		return nil, err
	}
	return &webhookService{
		secret:    secret,
		tolerance: int64(p.Config.Identity.Tolerance.Seconds()),
		clock:     p.Clock,
		subs:      p.Subscriptions,
		products:  p.Products,
		log:       p.Logger.Named("identity.webhook"),
	}, nil
}

// decodeSecret strips the provider's whsec_ prefix and base64-decodes the
// key material.
func decodeSecret(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(s, secretPrefix))
}

func (s *webhookService) HandleEvent(ctx context.Context, payload []byte, headers domain.WebhookHeaders) error {
	if err := s.verify(ctx, payload, headers); err != nil {
		return err
	}

	var event domain.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return err
	}

	switch event.Type {
	case domain.EventUserCreated:
		s.log.Info("user created", zap.String("owner_id", event.Data.ID))
		return s.subs.Create(ctx, event.Data.ID, subscriptiondomain.TierFree)

	case domain.EventUserDeleted:
		s.log.Info("user deleted", zap.String("owner_id", event.Data.ID))
		if err := s.products.DeleteAllForOwner(ctx, event.Data.ID); err != nil {
			return err
		}
		return s.subs.DeleteForOwner(ctx, event.Data.ID)

	default:
		// Unrecognized events acknowledge cleanly so the provider stops
		// retrying them.
		s.log.Debug("ignoring event", zap.String("type", event.Type))
		return nil
	}
}

// verify checks the id.timestamp.payload HMAC against every signature in
// the header; any match passes.
func (s *webhookService) verify(ctx context.Context, payload []byte, headers domain.WebhookHeaders) error {
	if headers.ID == "" || headers.Timestamp == "" || headers.Signature == "" {
		return domain.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(headers.Timestamp, 10, 64)
	if err != nil {
		return domain.ErrInvalidSignature
	}
	now := s.clock.Now(ctx).Unix()
	if ts < now-s.tolerance || ts > now+s.tolerance {
		return domain.ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(headers.ID))
	mac.Write([]byte("."))
	mac.Write([]byte(headers.Timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, part := range strings.Fields(headers.Signature) {
		version, sig, ok := strings.Cut(part, ",")
		if !ok || version != "v1" {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, raw) {
			return nil
		}
	}
	return domain.ErrInvalidSignature
}

// SignWebhook produces the v1 signature for a payload. Exported for tests.
func SignWebhook(secret string, id, timestamp string, payload []byte) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
