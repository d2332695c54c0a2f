package identity

import (
	"github.com/fairpricelabs/fairprice/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity",
	fx.Provide(
		service.NewTokenVerifier,
		service.NewWebhookService,
	),
)
