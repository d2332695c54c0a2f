package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fairpricelabs/fairprice/internal/billing/domain"
	"github.com/fairpricelabs/fairprice/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

type Params struct {
	fx.In

	Config config.Config
	Logger *zap.Logger
}

// stripeProvider talks to the billing API with form-encoded requests, the
// way the provider's own SDKs do.
type stripeProvider struct {
	baseURL   string
	secretKey string
	client    *http.Client
	log       *zap.Logger
}

func NewStripeProvider(p Params) domain.Provider {
	return &stripeProvider{
		baseURL:   strings.TrimSuffix(p.Config.Billing.APIBaseURL, "/"),
		secretKey: p.Config.Billing.SecretKey,
		client:    &http.Client{Timeout: requestTimeout},
		log:       p.Logger.Named("billing.provider"),
	}
}

type sessionResponse struct {
	URL string `json:"url"`
}

type subscriptionResponse struct {
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

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *stripeProvider) CreateCheckoutSession(ctx context.Context, params domain.CheckoutParams) (string, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("client_reference_id", params.ClientReferenceID)
	form.Set("line_items[0][price]", params.PriceRef)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}

	var resp sessionResponse
	if err := s.do(ctx, http.MethodPost, "/checkout/sessions", form, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (s *stripeProvider) CreatePortalSession(ctx context.Context, customerRef, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerRef)
	form.Set("return_url", returnURL)

	var resp sessionResponse
	if err := s.do(ctx, http.MethodPost, "/billing_portal/sessions", form, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (s *stripeProvider) CreateUpgradeSession(ctx context.Context, customerRef, subscriptionRef, itemRef, priceRef, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerRef)
	form.Set("return_url", returnURL)
	form.Set("flow_data[type]", "subscription_update_confirm")
	form.Set("flow_data[subscription_update_confirm][subscription]", subscriptionRef)
	form.Set("flow_data[subscription_update_confirm][items][0][id]", itemRef)
	form.Set("flow_data[subscription_update_confirm][items][0][price]", priceRef)
	form.Set("flow_data[subscription_update_confirm][items][0][quantity]", "1")

	var resp sessionResponse
	if err := s.do(ctx, http.MethodPost, "/billing_portal/sessions", form, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (s *stripeProvider) CancelSubscription(ctx context.Context, subscriptionRef string) error {
	return s.do(ctx, http.MethodDelete, "/subscriptions/"+url.PathEscape(subscriptionRef), nil, nil)
}

func (s *stripeProvider) GetSubscription(ctx context.Context, subscriptionRef string) (*domain.SubscriptionState, error) {
	var resp subscriptionResponse
	if err := s.do(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(subscriptionRef), nil, &resp); err != nil {
		return nil, err
	}

	state := &domain.SubscriptionState{
		SubscriptionRef: resp.ID,
		CustomerRef:     resp.Customer,
		Status:          resp.Status,
	}
	if len(resp.Items.Data) > 0 {
		state.SubscriptionItemRef = resp.Items.Data[0].ID
		state.PriceRef = resp.Items.Data[0].Price.ID
	}
	return state, nil
}

func (s *stripeProvider) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("billing request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return domain.ErrUpstream
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ErrUpstream
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorResponse
		_ = json.Unmarshal(raw, &apiErr)
		s.log.Error("billing api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Error.Message))
		return fmt.Errorf("%w: %s", domain.ErrUpstream, apiErr.Error.Message)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
