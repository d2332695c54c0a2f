package banner

import (
	"github.com/fairpricelabs/fairprice/internal/banner/repository"
	"github.com/fairpricelabs/fairprice/internal/banner/service"
	"go.uber.org/fx"
)

var Module = fx.Module("banner",
	fx.Provide(
		repository.NewBannerRepository,
		service.NewBannerService,
	),
)
