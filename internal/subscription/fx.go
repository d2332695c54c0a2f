package subscription

import (
	"github.com/fairpricelabs/fairprice/internal/subscription/domain"
	"github.com/fairpricelabs/fairprice/internal/subscription/repository"
	"github.com/fairpricelabs/fairprice/internal/subscription/service"
	viewdomain "github.com/fairpricelabs/fairprice/internal/view/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription",
	fx.Provide(
		repository.NewSubscriptionRepository,
		service.NewSubscriptionService,
		func(views viewdomain.Service) domain.ViewCounter { return views },
	),
)
