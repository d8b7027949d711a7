package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	fxratedomain "github.com/forthandvale/backoffice/internal/fxrate/domain"
	"gorm.io/gorm"
)

// seedRates are the development bootstrap rates from the PKR sourcing
// currency into each supported destination currency.
var seedRates = []struct {
	target string
	rate   float64
}{
	{"USD", 0.0036},
	{"GBP", 0.0028},
	{"EUR", 0.0033},
}

// EnsureFxRates seeds one rate per destination currency so a fresh database
// can price runs without an external feed. Pairs that already have any stored
// rate are left alone.
func EnsureFxRates(db *gorm.DB, sourceCurrency string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	now := time.Now().UTC()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, seed := range seedRates {
			var count int64
			err := tx.Model(&fxratedomain.Rate{}).
				Where("source_currency = ? AND target_currency = ?", sourceCurrency, seed.target).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			rate := fxratedomain.Rate{
				ID:             node.Generate(),
				Date:           now.Truncate(24 * time.Hour),
				SourceCurrency: sourceCurrency,
				TargetCurrency: seed.target,
				Value:          seed.rate,
				CreatedAt:      now,
			}
			if err := tx.Create(&rate).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
