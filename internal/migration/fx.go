package migration

import (
	"github.com/forthandvale/backoffice/internal/config"
	fxratedomain "github.com/forthandvale/backoffice/internal/fxrate/domain"
	importsdomain "github.com/forthandvale/backoffice/internal/imports/domain"
	pricingdomain "github.com/forthandvale/backoffice/internal/pricing/domain"
	"github.com/forthandvale/backoffice/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite carries no migration history; derive the schema from
			// the models directly.
			if err := conn.AutoMigrate(
				&fxratedomain.Rate{},
				&importsdomain.Import{},
				&importsdomain.Item{},
				&pricingdomain.Run{},
				&pricingdomain.ResultItem{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureFxRates(conn, cfg.SourceCurrency)
	}),
)
