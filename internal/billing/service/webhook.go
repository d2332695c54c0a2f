package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fairpricelabs/fairprice/internal/billing/domain"
	"github.com/fairpricelabs/fairprice/internal/clock"
	"github.com/fairpricelabs/fairprice/internal/config"
	subscriptiondomain "github.com/fairpricelabs/fairprice/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type WebhookParams struct {
	fx.In

	Config        config.Config
	Clock         clock.Clock
	Subscriptions subscriptiondomain.Service
	Logger        *zap.Logger
}

type webhookService struct {
	secret    string
	tolerance int64
	clock     clock.Clock
	subs      subscriptiondomain.Service
	log       *zap.Logger
}

func NewWebhookService(p WebhookParams) domain.WebhookService {
	tolerance := int64(p.Config.Billing.Tolerance.Seconds())
	if tolerance <= 0 {
		tolerance = 300
	}
	return &webhookService{
		secret:    p.Config.Billing.WebhookSecret,
		tolerance: tolerance,
		clock:     p.Clock,
		subs:      p.Subscriptions,
		log:       p.Logger.Named("billing.webhook"),
	}
}

type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type subscriptionObject struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
	Items    struct {
		Data []struct {
			ID    string `json:"id"`
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

func (s *webhookService) HandleEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	if err := s.verify(ctx, payload, signatureHeader); err != nil {
		return err
	}

	var ev event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}

	switch ev.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		return s.applySubscription(ctx, ev)
	case "customer.subscription.deleted":
		var sub subscriptionObject
		if err := json.Unmarshal(ev.Data.Object, &sub); err != nil {
			return err
		}
		s.log.Info("subscription deleted", zap.String("customer", sub.Customer))
		return s.subs.DeactivateBilling(ctx, sub.Customer)
	default:
		s.log.Debug("ignoring event", zap.String("type", ev.Type))
		return nil
	}
}

func (s *webhookService) applySubscription(ctx context.Context, ev event) error {
	var sub subscriptionObject
	if err := json.Unmarshal(ev.Data.Object, &sub); err != nil {
		return err
	}
	if len(sub.Items.Data) == 0 {
		return fmt.Errorf("event %s: subscription %s has no items", ev.ID, sub.ID)
	}

	item := sub.Items.Data[0]
	tier, ok := s.subs.TierByPriceRef(item.Price.ID)
	if !ok {
		return fmt.Errorf("event %s: no tier for price %s", ev.ID, item.Price.ID)
	}

	s.log.Info("subscription changed",
		zap.String("customer", sub.Customer),
		zap.String("tier", string(tier.Name)),
		zap.String("status", sub.Status))

	return s.subs.ActivateBilling(ctx, subscriptiondomain.BillingRefs{
		CustomerRef:         sub.Customer,
		SubscriptionRef:     sub.ID,
		SubscriptionItemRef: item.ID,
	}, tier.Name)
}

// verify checks the t=...,v1=... signature header: hex HMAC-SHA256 over
// "timestamp.payload".
func (s *webhookService) verify(ctx context.Context, payload []byte, header string) error {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return domain.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return domain.ErrInvalidSignature
	}
	now := s.clock.Now(ctx).Unix()
	if ts < now-s.tolerance || ts > now+s.tolerance {
		return domain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return domain.ErrInvalidSignature
}

func parseSignatureHeader(header string) (string, []string, error) {
	var timestamp string
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		key, value, ok := strings.Cut(piece, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "t":
			timestamp = strings.TrimSpace(value)
		case "v1":
			signatures = append(signatures, strings.TrimSpace(value))
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return "", nil, domain.ErrInvalidSignature
	}
	return timestamp, signatures, nil
}

// SignPayload builds a valid signature header for a payload. Exported for
// tests.
func SignPayload(secret string, timestamp int64, payload []byte) string {
	ts := strconv.FormatInt(timestamp, 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}
