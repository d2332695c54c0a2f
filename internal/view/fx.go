package view

import (
	"github.com/fairpricelabs/fairprice/internal/view/repository"
	"github.com/fairpricelabs/fairprice/internal/view/service"
	"go.uber.org/fx"
)

var Module = fx.Module("view",
	fx.Provide(
		repository.NewViewRepository,
		service.NewViewService,
	),
)
