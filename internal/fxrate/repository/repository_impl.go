package repository

import (
	"context"
	"time"

	"github.com/forthandvale/backoffice/internal/fxrate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rate *domain.Rate) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO fx_rates (id, rate_date, source_currency, target_currency, rate, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rate.ID,
		rate.Date,
		rate.SourceCurrency,
		rate.TargetCurrency,
		rate.Value,
		rate.CreatedAt,
	).Error
}

func (r *repo) FindLatest(ctx context.Context, db *gorm.DB, source, target string) (*domain.Rate, error) {
	var rate domain.Rate
	err := db.WithContext(ctx).Raw(
		`SELECT id, rate_date, source_currency, target_currency, rate, created_at
		 FROM fx_rates
		 WHERE source_currency = ? AND target_currency = ?
		 ORDER BY rate_date DESC, id DESC
		 LIMIT 1`,
		source,
		target,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}

func (r *repo) FindByDate(ctx context.Context, db *gorm.DB, source, target string, date time.Time) (*domain.Rate, error) {
	var rate domain.Rate
	err := db.WithContext(ctx).Raw(
		`SELECT id, rate_date, source_currency, target_currency, rate, created_at
		 FROM fx_rates
		 WHERE source_currency = ? AND target_currency = ? AND rate_date <= ?
		 ORDER BY rate_date DESC, id DESC
		 LIMIT 1`,
		source,
		target,
		date,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}
