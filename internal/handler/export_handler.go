package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/aulavista/horarios-api/internal/dto"
	"github.com/aulavista/horarios-api/internal/service"
	appErrors "github.com/aulavista/horarios-api/pkg/errors"
	"github.com/aulavista/horarios-api/pkg/response"
)

// ExportHandler renders timetable files and serves signed downloads.
type ExportHandler struct {
	exports *service.ExportService
	prefix  string
}

// NewExportHandler constructs an ExportHandler. prefix is the mounted API
// prefix used to build download URLs.
func NewExportHandler(exports *service.ExportService, prefix string) *ExportHandler {
	return &ExportHandler{exports: exports, prefix: prefix}
}

// Create godoc
// @Summary Render a group timetable as CSV or PDF
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.ExportRequest true "Export request"
// @Success 201 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload"))
		return
	}
	result, err := h.exports.Export(c.Request.Context(), req.Group, req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ExportResponse{
		ExportID:    result.ExportID,
		FileName:    filepath.Base(result.FileName),
		Format:      result.Format,
		DownloadURL: fmt.Sprintf("%s/exports/download?token=%s", h.prefix, result.Token),
	})
}

// Download godoc
// @Summary Stream a rendered export file
// @Tags Exports
// @Param token query string true "Signed download token"
// @Success 200
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, name, err := h.exports.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(name) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
