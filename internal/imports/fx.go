package imports

import (
	"github.com/forthandvale/backoffice/internal/imports/repository"
	"github.com/forthandvale/backoffice/internal/imports/service"
	"go.uber.org/fx"
)

var Module = fx.Module("imports.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
