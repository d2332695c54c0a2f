package billing

import (
	"github.com/fairpricelabs/fairprice/internal/billing/provider"
	"github.com/fairpricelabs/fairprice/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing",
	fx.Provide(
		provider.NewStripeProvider,
		service.NewWebhookService,
	),
)
