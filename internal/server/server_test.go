package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	bannerdomain "github.com/fairpricelabs/fairprice/internal/banner/domain"
	"github.com/fairpricelabs/fairprice/internal/config"
	identitydomain "github.com/fairpricelabs/fairprice/internal/identity/domain"
	productdomain "github.com/fairpricelabs/fairprice/internal/product/domain"
	subscriptiondomain "github.com/fairpricelabs/fairprice/internal/subscription/domain"
	viewdomain "github.com/fairpricelabs/fairprice/internal/view/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (string, error) {
	if token == "good-token" {
		return "user_1", nil
	}
	return "", identitydomain.ErrInvalidToken
}

type stubSubs struct {
	subscriptiondomain.Service

	canShow      bool
	canBranding  bool
	canAnalytics bool
}

func (s *stubSubs) CanShowBanner(context.Context, string) (bool, error) { return s.canShow, nil }
func (s *stubSubs) CanRemoveBranding(context.Context, string) (bool, error) {
	return s.canBranding, nil
}
func (s *stubSubs) CanAccessAnalytics(context.Context, string) (bool, error) {
	return s.canAnalytics, nil
}

func (s *stubSubs) Tiers() []subscriptiondomain.Tier {
	return []subscriptiondomain.Tier{{Name: subscriptiondomain.TierFree, MaxProducts: 1}}
}

type stubBanner struct {
	resolution *bannerdomain.Resolution
	err        error
}

func (s *stubBanner) Resolve(context.Context, bannerdomain.ResolveRequest) (*bannerdomain.Resolution, error) {
	return s.resolution, s.err
}

type stubViews struct {
	viewdomain.Service

	recorded chan viewdomain.RecordRequest
}

func (s *stubViews) Record(_ context.Context, req viewdomain.RecordRequest) error {
	s.recorded <- req
	return nil
}

type stubProducts struct {
	productdomain.Service

	listErr error
}

func (s *stubProducts) List(context.Context, string) ([]productdomain.Product, error) {
	return nil, s.listErr
}

type testDeps struct {
	subs     *stubSubs
	banner   *stubBanner
	views    *stubViews
	products *stubProducts
}

func newTestServer(t *testing.T) (*gin.Engine, *testDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deps := &testDeps{
		subs:     &stubSubs{canShow: true, canAnalytics: true},
		banner:   &stubBanner{resolution: &bannerdomain.Resolution{}},
		views:    &stubViews{recorded: make(chan viewdomain.RecordRequest, 1)},
		products: &stubProducts{},
	}

	cfg := config.Config{
		App:    config.AppConfig{Name: "fairprice", Env: "production"},
		Banner: config.BannerConfig{CountryHeader: "CF-IPCountry"},
	}

	srv := NewServer(Params{
		Config:        cfg,
		Logger:        zap.NewNop(),
		Registry:      prometheus.NewRegistry(),
		Verifier:      stubVerifier{},
		Products:      deps.products,
		Subscriptions: deps.subs,
		Views:         deps.views,
		Banners:       deps.banner,
	})

	engine := gin.New()
	srv.RegisterRoutes(engine)
	return engine, deps
}

func TestAuthRequired(t *testing.T) {
	engine, _ := newTestServer(t)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "good-token", http.StatusUnauthorized},
		{"wrong scheme", "Basic good-token", http.StatusUnauthorized},
		{"bad token", "Bearer bad-token", http.StatusUnauthorized},
		{"valid", "Bearer good-token", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/subscription/tiers", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	engine, deps := newTestServer(t)

	cases := []struct {
		err    error
		status int
	}{
		{productdomain.ErrNotFound, http.StatusNotFound},
		{productdomain.ErrQuotaExceeded, http.StatusForbidden},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		deps.products.listErr = tc.err
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Error.Code)
	}
}

func resolvedBanner() *bannerdomain.Resolution {
	return &bannerdomain.Resolution{
		Product: &bannerdomain.ProductWithCustomization{
			ProductID:       snowflake.ID(10),
			OwnerID:         "user_1",
			LocationMessage: `From {country}? Use "{coupon}" for {discount}% off!`,
			BannerContainer: "body",
			IsSticky:        true,
		},
		Country:  &bannerdomain.ResolvedCountry{ID: snowflake.ID(1), Name: "India"},
		Discount: &bannerdomain.Discount{Coupon: "PPP60", Percentage: 0.6},
	}
}

func TestGetBannerRendersAndRecordsView(t *testing.T) {
	engine, deps := newTestServer(t)
	deps.banner.resolution = resolvedBanner()
	deps.subs.canBranding = true

	req := httptest.NewRequest(http.MethodGet, "/api/banner/10", nil)
	req.Header.Set("CF-IPCountry", "IN")
	req.Header.Set("Referer", "https://course.example.com/landing")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data bannerResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PPP60", body.Data.Coupon)
	assert.True(t, body.Data.CanRemoveBranding)

	select {
	case recorded := <-deps.views.recorded:
		assert.Equal(t, snowflake.ID(10), recorded.ProductID)
		assert.Equal(t, "user_1", recorded.OwnerID)
		require.NotNil(t, recorded.CountryID)
		assert.Equal(t, snowflake.ID(1), *recorded.CountryID)
	case <-time.After(time.Second):
		t.Fatal("view was never recorded")
	}
}

func TestGetBannerQuotaExhausted(t *testing.T) {
	engine, deps := newTestServer(t)
	deps.banner.resolution = resolvedBanner()
	deps.subs.canShow = false

	req := httptest.NewRequest(http.MethodGet, "/api/banner/10", nil)
	req.Header.Set("CF-IPCountry", "IN")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	select {
	case <-deps.views.recorded:
		t.Fatal("suppressed banner must not count a view")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestGetBannerWithoutCountryHeader(t *testing.T) {
	engine, deps := newTestServer(t)
	deps.banner.resolution = resolvedBanner()

	req := httptest.NewRequest(http.MethodGet, "/api/banner/10", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBannerInvalidProductID(t *testing.T) {
	engine, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/banner/not-a-number", nil)
	req.Header.Set("CF-IPCountry", "IN")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsGate(t *testing.T) {
	engine, deps := newTestServer(t)
	deps.subs.canAnalytics = false

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/views-by-day", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "permission_denied"))
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
