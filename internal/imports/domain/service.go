package domain

import (
	"context"
	"io"
)

type CreateRequest struct {
	Name     string
	FileName string
	Reader   io.Reader
	Mapping  ColumnMapping
}

type CreateResponse struct {
	Import           Import            `json:"import"`
	ItemCount        int               `json:"item_count"`
	ValidationErrors []ValidationError `json:"validation_errors"`
}

type Service interface {
	// Create parses the uploaded workbook, validates every row and stores the
	// valid ones. Row-level failures are reported, not fatal; a workbook with
	// no valid rows at all is rejected.
	Create(ctx context.Context, req CreateRequest) (CreateResponse, error)
	Get(ctx context.Context, id string) (Import, error)
	ListItems(ctx context.Context, id string) ([]Item, error)
}
