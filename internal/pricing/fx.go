package pricing

import (
	"github.com/forthandvale/backoffice/internal/pricing/repository"
	"github.com/forthandvale/backoffice/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
