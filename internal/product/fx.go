package product

import (
	"github.com/fairpricelabs/fairprice/internal/product/repository"
	"github.com/fairpricelabs/fairprice/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product",
	fx.Provide(
		repository.NewProductRepository,
		service.NewProductService,
	),
)
