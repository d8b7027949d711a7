package domain

import "errors"

var (
	ErrRateUnavailable = errors.New("rate_unavailable")
	ErrInvalidCurrency = errors.New("invalid_currency")
)
