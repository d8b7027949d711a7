package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rate *Rate) error
	// FindLatest returns the most recent rate for the pair, nil if none exists.
	FindLatest(ctx context.Context, db *gorm.DB, source, target string) (*Rate, error)
	// FindByDate returns the newest rate on or before the given date, nil if none exists.
	FindByDate(ctx context.Context, db *gorm.DB, source, target string, date time.Time) (*Rate, error)
}
