package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/forthandvale/backoffice/internal/imports/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, imp *domain.Import, items []domain.Item) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(imp).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Import, error) {
	var imp domain.Import
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, file_name, item_count, created_at
		 FROM pricing_imports WHERE id = ?`,
		id,
	).Scan(&imp).Error
	if err != nil {
		return nil, err
	}
	if imp.ID == 0 {
		return nil, nil
	}
	return &imp, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, importID snowflake.ID) ([]domain.Item, error) {
	var items []domain.Item
	err := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("import_id = ?", importID).
		Order("row_number asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
