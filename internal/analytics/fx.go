package analytics

import (
	"github.com/fairpricelabs/fairprice/internal/analytics/repository"
	"github.com/fairpricelabs/fairprice/internal/analytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics",
	fx.Provide(
		repository.NewAnalyticsRepository,
		service.NewAnalyticsService,
	),
)
