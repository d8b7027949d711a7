package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// GetLatestFxRate returns the most recent stored rate for a currency pair.
// An omitted source defaults to the configured sourcing currency.
func (s *Server) GetLatestFxRate(c *gin.Context) {
	source := strings.TrimSpace(c.Query("source"))
	if source == "" {
		source = s.cfg.SourceCurrency
	}
	target := strings.TrimSpace(c.Query("target"))
	if target == "" {
		AbortWithError(c, newValidationError("target", "invalid_target", "target currency is required"))
		return
	}

	rate, err := s.fxRateSvc.Latest(c.Request.Context(), source, target)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rate})
}

// GetFxRate returns the rate in force on a given date, falling back to the
// newest rate on or before it.
func (s *Server) GetFxRate(c *gin.Context) {
	source := strings.TrimSpace(c.Query("source"))
	if source == "" {
		source = s.cfg.SourceCurrency
	}
	target := strings.TrimSpace(c.Query("target"))
	if target == "" {
		AbortWithError(c, newValidationError("target", "invalid_target", "target currency is required"))
		return
	}

	var date *time.Time
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, newValidationError("date", "invalid_date", "date must be YYYY-MM-DD"))
			return
		}
		date = &parsed
	}

	rate, err := s.fxRateSvc.Resolve(c.Request.Context(), source, target, date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rate})
}
