package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/forthandvale/backoffice/internal/export"
	fxratedomain "github.com/forthandvale/backoffice/internal/fxrate/domain"
	importsdomain "github.com/forthandvale/backoffice/internal/imports/domain"
	pricingdomain "github.com/forthandvale/backoffice/internal/pricing/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, pricingdomain.ErrRunNotCompleted):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, fxratedomain.ErrRateUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isConfigValidationError(err):
		return true
	case errors.Is(err, pricingdomain.ErrInvalidID),
		errors.Is(err, pricingdomain.ErrInvalidName),
		errors.Is(err, pricingdomain.ErrInvalidLineItem),
		errors.Is(err, pricingdomain.ErrEmptyImport):
		return true
	case errors.Is(err, importsdomain.ErrInvalidID),
		errors.Is(err, importsdomain.ErrEmptyWorkbook),
		errors.Is(err, importsdomain.ErrMissingColumns),
		errors.Is(err, importsdomain.ErrNoValidRows),
		errors.Is(err, importsdomain.ErrInvalidWorkbook):
		return true
	case errors.Is(err, fxratedomain.ErrInvalidCurrency),
		errors.Is(err, export.ErrUnsupportedFormat):
		return true
	default:
		return false
	}
}

func isConfigValidationError(err error) bool {
	switch {
	case errors.Is(err, pricingdomain.ErrInvalidMarket),
		errors.Is(err, pricingdomain.ErrInvalidMarginMode),
		errors.Is(err, pricingdomain.ErrInvalidMarginValue),
		errors.Is(err, pricingdomain.ErrMarginTooHigh),
		errors.Is(err, pricingdomain.ErrInvalidFreightModel),
		errors.Is(err, pricingdomain.ErrNegativeFreight),
		errors.Is(err, pricingdomain.ErrInvalidInsuranceModel),
		errors.Is(err, pricingdomain.ErrNegativeInsurance),
		errors.Is(err, pricingdomain.ErrInvalidRoundingRule):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, importsdomain.ErrNotFound),
		errors.Is(err, pricingdomain.ErrRunNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, pricingdomain.ErrInvalidLineItem):
		return "invalid_line_item"
	default:
		return rootCode(err)
	}
}

// rootCode digs the sentinel code out of a wrapped error chain.
func rootCode(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
