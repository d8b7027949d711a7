package server

import (
	"net/http"
	"strings"

	"github.com/forthandvale/backoffice/internal/export"
	pricingdomain "github.com/forthandvale/backoffice/internal/pricing/domain"
	"github.com/forthandvale/backoffice/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createRunRequest struct {
	ImportID string                      `json:"import_id"`
	Name     string                      `json:"name"`
	Config   pricingdomain.Configuration `json:"config"`
}

func (s *Server) CreateRun(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	run, err := s.pricingSvc.CreateRun(c.Request.Context(), pricingdomain.CreateRunRequest{
		ImportID: strings.TrimSpace(req.ImportID),
		Name:     req.Name,
		Config:   req.Config,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

func (s *Server) ListRuns(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Saved string `form:"saved"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var saved *bool
	switch strings.ToLower(strings.TrimSpace(query.Saved)) {
	case "":
	case "true":
		v := true
		saved = &v
	case "false":
		v := false
		saved = &v
	default:
		AbortWithError(c, newValidationError("saved", "invalid_saved", "saved must be true or false"))
		return
	}

	resp, err := s.pricingSvc.ListRuns(c.Request.Context(), pricingdomain.ListRunsRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		Saved:     saved,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRun(c *gin.Context) {
	run, err := s.pricingSvc.GetRun(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

func (s *Server) CalculateRun(c *gin.Context) {
	resp, err := s.pricingSvc.CalculateRun(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRunResults(c *gin.Context) {
	items, err := s.pricingSvc.ListResults(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

type renameRunRequest struct {
	Name string `json:"name"`
}

func (s *Server) RenameRun(c *gin.Context) {
	var req renameRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	run, err := s.pricingSvc.RenameRun(c.Request.Context(), pricingdomain.RenameRunRequest{
		ID:   strings.TrimSpace(c.Param("id")),
		Name: req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

func (s *Server) DuplicateRun(c *gin.Context) {
	run, err := s.pricingSvc.DuplicateRun(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

// ExportRun streams a completed run as csv, xlsx or pdf.
func (s *Server) ExportRun(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	run, err := s.pricingSvc.GetRun(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	items, err := s.pricingSvc.ListResults(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(run, format)+`"`)
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, format, run, items); err != nil {
		AbortWithError(c, err)
		return
	}
}
