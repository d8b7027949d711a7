package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/forthandvale/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	InsertRun(ctx context.Context, db *gorm.DB, run *Run) error
	FindRunByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Run, error)
	ListRuns(ctx context.Context, db *gorm.DB, filter ListRunsRequest, page pagination.Pagination) ([]*Run, error)
	UpdateRun(ctx context.Context, db *gorm.DB, run *Run) error

	// ReplaceResults deletes any prior result set for the run and inserts the
	// new one in a single transaction. Recalculation is replace-not-append.
	ReplaceResults(ctx context.Context, db *gorm.DB, runID snowflake.ID, items []ResultItem) error
	ListResults(ctx context.Context, db *gorm.DB, runID snowflake.ID) ([]ResultItem, error)
}
