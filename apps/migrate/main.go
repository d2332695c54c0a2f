package main

import (
	"github.com/fairpricelabs/fairprice/internal/cache"
	"github.com/fairpricelabs/fairprice/internal/config"
	countrydomain "github.com/fairpricelabs/fairprice/internal/country/domain"
	countryrepository "github.com/fairpricelabs/fairprice/internal/country/repository"
	"github.com/fairpricelabs/fairprice/internal/database"
	"github.com/fairpricelabs/fairprice/internal/migration"
	"github.com/fairpricelabs/fairprice/internal/observability"
	"github.com/fairpricelabs/fairprice/internal/redis"
	"github.com/fairpricelabs/fairprice/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Applies schema migrations and seeds the country reference data, then exits.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		database.Module,
		redis.Module,
		cache.Module,
		fx.Provide(countryrepository.NewCountryRepository),
		migration.Module,
		fx.Invoke(runSeed),
	)
	app.Run()
}

func runSeed(db *gorm.DB, repo countrydomain.Repository, c *cache.Cache, log *zap.Logger, sd fx.Shutdowner) error {
	if err := seed.EnsureCountryReferenceData(db, repo, c); err != nil {
		return err
	}
	log.Info("country reference data seeded")
	return sd.Shutdown()
}
