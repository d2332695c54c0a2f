// @title           FairPrice API
// @version         1.0
// @description     Purchasing-power-parity discount banners for course sellers.

// @contact.name   API Support
// @contact.email  support@fairprice.dev

// @host      localhost:8080
// @BasePath  /api
// @Schemes 	http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/fairpricelabs/fairprice/internal/analytics"
	"github.com/fairpricelabs/fairprice/internal/banner"
	"github.com/fairpricelabs/fairprice/internal/billing"
	"github.com/fairpricelabs/fairprice/internal/cache"
	"github.com/fairpricelabs/fairprice/internal/clock"
	"github.com/fairpricelabs/fairprice/internal/config"
	"github.com/fairpricelabs/fairprice/internal/country"
	"github.com/fairpricelabs/fairprice/internal/database"
	"github.com/fairpricelabs/fairprice/internal/identity"
	"github.com/fairpricelabs/fairprice/internal/observability"
	"github.com/fairpricelabs/fairprice/internal/product"
	"github.com/fairpricelabs/fairprice/internal/redis"
	"github.com/fairpricelabs/fairprice/internal/server"
	"github.com/fairpricelabs/fairprice/internal/subscription"
	"github.com/fairpricelabs/fairprice/internal/view"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		database.Module,
		redis.Module,
		cache.Module,
		clock.Module,

		// Functional domains
		country.Module,
		view.Module,
		subscription.Module,
		product.Module,
		analytics.Module,
		banner.Module,
		identity.Module,
		billing.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
