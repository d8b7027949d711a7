package domain

import (
	"context"
	"time"

	pricingdomain "github.com/forthandvale/backoffice/internal/pricing/domain"
)

// Service resolves exchange rates for a currency pair. Lookup misses either
// fail with ErrRateUnavailable or substitute a configured fallback rate; the
// policy is fixed at construction and applied consistently.
type Service interface {
	// Resolve returns the rate for date if given, else the most recent rate.
	Resolve(ctx context.Context, source, target string, date *time.Time) (pricingdomain.FxRate, error)
	Latest(ctx context.Context, source, target string) (pricingdomain.FxRate, error)
}
