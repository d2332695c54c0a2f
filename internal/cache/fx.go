package cache

import (
	"github.com/fairpricelabs/fairprice/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(provideMetrics),
	fx.Provide(provideBackend),
	fx.Provide(New),
)

func provideMetrics(reg *prometheus.Registry) *Metrics {
	return NewMetrics(reg)
}

func provideBackend(cfg config.Config, client *redis.Client, log *zap.Logger) Backend {
	if cfg.Cache.Backend == "redis" && client != nil {
		return NewRedisBackend(client, cfg.Cache.EntryTTL)
	}
	if cfg.Cache.Backend == "redis" {
		log.Named("cache").Warn("redis backend requested but no redis address configured, using in-process backend")
	}
	return NewMemoryBackend()
}
