package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/forthandvale/backoffice/internal/pricing/domain"
	"github.com/forthandvale/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertRun(ctx context.Context, db *gorm.DB, run *domain.Run) error {
	return db.WithContext(ctx).Create(run).Error
}

func (r *repo) FindRunByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Run, error) {
	var run domain.Run
	err := db.WithContext(ctx).
		Model(&domain.Run{}).
		Where("id = ?", id).
		First(&run).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *repo) ListRuns(ctx context.Context, db *gorm.DB, filter domain.ListRunsRequest, page pagination.Pagination) ([]*domain.Run, error) {
	query := db.WithContext(ctx).Model(&domain.Run{})

	if filter.Saved != nil {
		query = query.Where("saved = ?", *filter.Saved)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		query = query.Where("(created_at, id) < (?, ?)", createdAt, cursor.ID)
	}

	// One extra row past the page size signals another page.
	var runs []*domain.Run
	err := query.
		Order("created_at desc, id desc").
		Limit(page.PageSize + 1).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *repo) UpdateRun(ctx context.Context, db *gorm.DB, run *domain.Run) error {
	run.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(run).Error
}

func (r *repo) ReplaceResults(ctx context.Context, db *gorm.DB, runID snowflake.ID, items []domain.ResultItem) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM pricing_result_items WHERE run_id = ?`, runID).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *repo) ListResults(ctx context.Context, db *gorm.DB, runID snowflake.ID) ([]domain.ResultItem, error) {
	var items []domain.ResultItem
	err := db.WithContext(ctx).
		Model(&domain.ResultItem{}).
		Where("run_id = ?", runID).
		Order("position asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
