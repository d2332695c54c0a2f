package country

import (
	"github.com/fairpricelabs/fairprice/internal/country/repository"
	"github.com/fairpricelabs/fairprice/internal/country/service"
	"go.uber.org/fx"
)

var Module = fx.Module("country",
	fx.Provide(
		repository.NewCountryRepository,
		service.NewCountryService,
	),
)
