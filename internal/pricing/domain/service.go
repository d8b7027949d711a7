package domain

import (
	"context"

	"github.com/forthandvale/backoffice/pkg/db/pagination"
)

type CreateRunRequest struct {
	ImportID string        `json:"import_id"`
	Name     string        `json:"name"`
	Config   Configuration `json:"config"`
}

type ListRunsRequest struct {
	PageToken string
	PageSize  int
	Saved     *bool
}

type ListRunsResponse struct {
	pagination.PageInfo
	Runs []Run `json:"runs"`
}

type CalculationResponse struct {
	Run     Run          `json:"run"`
	Items   []ResultItem `json:"items"`
	Summary Summary      `json:"summary"`
	FxRate  FxRate       `json:"fx_rate_snapshot"`
}

type RenameRunRequest struct {
	ID   string `json:"-"`
	Name string `json:"name"`
}

type Service interface {
	CreateRun(ctx context.Context, req CreateRunRequest) (Run, error)
	CalculateRun(ctx context.Context, runID string) (CalculationResponse, error)
	GetRun(ctx context.Context, runID string) (Run, error)
	ListRuns(ctx context.Context, req ListRunsRequest) (ListRunsResponse, error)
	ListResults(ctx context.Context, runID string) ([]ResultItem, error)
	RenameRun(ctx context.Context, req RenameRunRequest) (Run, error)
	DuplicateRun(ctx context.Context, runID string) (Run, error)
}
