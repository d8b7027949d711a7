package domain

import "errors"

var (
	ErrInvalidMarket         = errors.New("invalid_market")
	ErrInvalidMarginMode     = errors.New("invalid_margin_mode")
	ErrInvalidMarginValue    = errors.New("invalid_margin_value")
	ErrMarginTooHigh         = errors.New("margin_too_high")
	ErrInvalidFreightModel   = errors.New("invalid_freight_model")
	ErrNegativeFreight       = errors.New("negative_freight")
	ErrInvalidInsuranceModel = errors.New("invalid_insurance_model")
	ErrNegativeInsurance     = errors.New("negative_insurance")
	ErrInvalidRoundingRule   = errors.New("invalid_rounding_rule")

	ErrInvalidLineItem = errors.New("invalid_line_item")

	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrRunNotFound     = errors.New("run_not_found")
	ErrRunNotCompleted = errors.New("run_not_completed")
	ErrEmptyImport     = errors.New("empty_import")
)
