package fxrate

import (
	"github.com/forthandvale/backoffice/internal/fxrate/repository"
	"github.com/forthandvale/backoffice/internal/fxrate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fxrate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
