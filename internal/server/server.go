package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	analyticsdomain "github.com/fairpricelabs/fairprice/internal/analytics/domain"
	bannerdomain "github.com/fairpricelabs/fairprice/internal/banner/domain"
	billingdomain "github.com/fairpricelabs/fairprice/internal/billing/domain"
	"github.com/fairpricelabs/fairprice/internal/config"
	countrydomain "github.com/fairpricelabs/fairprice/internal/country/domain"
	identitydomain "github.com/fairpricelabs/fairprice/internal/identity/domain"
	productdomain "github.com/fairpricelabs/fairprice/internal/product/domain"
	subscriptiondomain "github.com/fairpricelabs/fairprice/internal/subscription/domain"
	viewdomain "github.com/fairpricelabs/fairprice/internal/view/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config          config.Config
	Logger          *zap.Logger
	Registry        *prometheus.Registry
	Verifier        identitydomain.Verifier
	IdentityWebhook identitydomain.WebhookService
	BillingWebhook  billingdomain.WebhookService
	Products        productdomain.Service
	Countries       countrydomain.Service
	Subscriptions   subscriptiondomain.Service
	Views           viewdomain.Service
	Analytics       analyticsdomain.Service
	Banners         bannerdomain.Service
}

type Server struct {
	cfg             config.Config
	log             *zap.Logger
	registry        *prometheus.Registry
	verifier        identitydomain.Verifier
	identityWebhook identitydomain.WebhookService
	billingWebhook  billingdomain.WebhookService
	productSvc      productdomain.Service
	countrySvc      countrydomain.Service
	subscriptionSvc subscriptiondomain.Service
	viewSvc         viewdomain.Service
	analyticsSvc    analyticsdomain.Service
	bannerSvc       bannerdomain.Service
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:             p.Config,
		log:             p.Logger.Named("server"),
		registry:        p.Registry,
		verifier:        p.Verifier,
		identityWebhook: p.IdentityWebhook,
		billingWebhook:  p.BillingWebhook,
		productSvc:      p.Products,
		countrySvc:      p.Countries,
		subscriptionSvc: p.Subscriptions,
		viewSvc:         p.Views,
		analyticsSvc:    p.Analytics,
		bannerSvc:       p.Banners,
	}
}

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))
	return engine
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		log.Info("request", fields...)
	}
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	engine.POST("/webhooks/identity", s.HandleIdentityWebhook)
	engine.POST("/webhooks/billing", s.HandleBillingWebhook)

	// Public, embedded on customer pages.
	engine.GET("/api/banner/:product_id", s.GetBanner)

	api := engine.Group("/api/v1")
	api.Use(s.AuthRequired())
	{
		api.GET("/products", s.ListProducts)
		api.POST("/products", s.CreateProduct)
		api.GET("/products/:product_id", s.GetProduct)
		api.PUT("/products/:product_id", s.UpdateProduct)
		api.DELETE("/products/:product_id", s.DeleteProduct)
		api.GET("/products/:product_id/customization", s.GetCustomization)
		api.PUT("/products/:product_id/customization", s.UpdateCustomization)
		api.GET("/products/:product_id/country-discounts", s.ListCountryDiscounts)
		api.PUT("/products/:product_id/country-discounts", s.UpdateCountryDiscounts)

		api.GET("/analytics/views-by-day", s.ViewsByDay)
		api.GET("/analytics/views-by-country", s.ViewsByCountry)
		api.GET("/analytics/views-by-ppp-group", s.ViewsByPPPGroup)

		api.GET("/subscription", s.GetSubscription)
		api.GET("/subscription/tiers", s.ListTiers)
		api.POST("/subscription/checkout", s.CreateCheckout)
		api.POST("/subscription/portal", s.CreatePortal)
	}
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, s *Server, log *zap.Logger) {
	s.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine, NewServer),
	fx.Invoke(RunHTTP),
)
