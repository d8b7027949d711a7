package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, imp *Import, items []Item) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Import, error)
	ListItems(ctx context.Context, db *gorm.DB, importID snowflake.ID) ([]Item, error)
}
