package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("import_not_found")
	ErrEmptyWorkbook   = errors.New("empty_workbook")
	ErrMissingColumns  = errors.New("missing_columns")
	ErrNoValidRows     = errors.New("no_valid_rows")
	ErrInvalidWorkbook = errors.New("invalid_workbook")
)
