package server

import (
	"encoding/json"
	"net/http"
	"strings"

	importsdomain "github.com/forthandvale/backoffice/internal/imports/domain"
	"github.com/gin-gonic/gin"
)

// CreateImport accepts a multipart upload: the workbook under "file" and an
// optional "mapping" part carrying a column-mapping JSON object.
func (s *Server) CreateImport(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "invalid_file", "workbook file is required"))
		return
	}

	var mapping importsdomain.ColumnMapping
	if raw := strings.TrimSpace(c.PostForm("mapping")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			AbortWithError(c, newValidationError("mapping", "invalid_mapping", "mapping must be a JSON object"))
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer file.Close()

	resp, err := s.importsSvc.Create(c.Request.Context(), importsdomain.CreateRequest{
		Name:     strings.TrimSpace(c.PostForm("name")),
		FileName: fileHeader.Filename,
		Reader:   file,
		Mapping:  mapping,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetImport(c *gin.Context) {
	resp, err := s.importsSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListImportItems(c *gin.Context) {
	items, err := s.importsSvc.ListItems(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
