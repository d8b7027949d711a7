package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/forthandvale/backoffice/internal/config"
	"github.com/forthandvale/backoffice/internal/fxrate/domain"
	"github.com/forthandvale/backoffice/internal/metrics"
	pricingdomain "github.com/forthandvale/backoffice/internal/pricing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Cfg     config.Config
	Repo    domain.Repository
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	metrics *metrics.Metrics

	fallbackEnabled bool
	fallbackRate    float64

	// latest-rate lookups only; dated lookups are historical and stable.
	cache *ttlCache[string, pricingdomain.FxRate]
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("fxrate.service"),
		repo:            p.Repo,
		metrics:         p.Metrics,
		fallbackEnabled: p.Cfg.FXFallbackEnabled,
		fallbackRate:    p.Cfg.FXFallbackRate,
		cache:           newTTLCache[string, pricingdomain.FxRate](p.Cfg.FXCacheTTL),
	}
}

func (s *Service) Resolve(ctx context.Context, source, target string, date *time.Time) (pricingdomain.FxRate, error) {
	source = strings.ToUpper(strings.TrimSpace(source))
	target = strings.ToUpper(strings.TrimSpace(target))
	if source == "" || target == "" {
		return pricingdomain.FxRate{}, domain.ErrInvalidCurrency
	}

	if date == nil {
		return s.Latest(ctx, source, target)
	}

	rate, err := s.repo.FindByDate(ctx, s.db, source, target, *date)
	if err != nil {
		return pricingdomain.FxRate{}, err
	}
	if rate == nil {
		return s.miss(source, target, *date)
	}
	return snapshot(rate), nil
}

func (s *Service) Latest(ctx context.Context, source, target string) (pricingdomain.FxRate, error) {
	source = strings.ToUpper(strings.TrimSpace(source))
	target = strings.ToUpper(strings.TrimSpace(target))
	if source == "" || target == "" {
		return pricingdomain.FxRate{}, domain.ErrInvalidCurrency
	}

	key := source + "-" + target
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	rate, err := s.repo.FindLatest(ctx, s.db, source, target)
	if err != nil {
		return pricingdomain.FxRate{}, err
	}
	if rate == nil {
		return s.miss(source, target, time.Now().UTC())
	}

	snap := snapshot(rate)
	s.cache.Set(key, snap)
	return snap, nil
}

// miss applies the configured availability policy: substitute the documented
// fallback rate, or fail the lookup. Never a mix of both.
func (s *Service) miss(source, target string, date time.Time) (pricingdomain.FxRate, error) {
	if !s.fallbackEnabled {
		return pricingdomain.FxRate{}, fmt.Errorf("%s-%s: %w", source, target, domain.ErrRateUnavailable)
	}

	s.metrics.FxRateFallbacks.Inc()
	s.log.Warn("no stored rate for pair, substituting fallback",
		zap.String("source", source),
		zap.String("target", target),
		zap.Float64("fallback_rate", s.fallbackRate),
	)
	return pricingdomain.FxRate{
		Date:           date,
		Rate:           s.fallbackRate,
		SourceCurrency: source,
		TargetCurrency: target,
	}, nil
}

func snapshot(rate *domain.Rate) pricingdomain.FxRate {
	return pricingdomain.FxRate{
		Date:           rate.Date,
		Rate:           rate.Value,
		SourceCurrency: rate.SourceCurrency,
		TargetCurrency: rate.TargetCurrency,
	}
}
