package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aulavista/horarios-api/internal/dto"
	"github.com/aulavista/horarios-api/internal/service"
	appErrors "github.com/aulavista/horarios-api/pkg/errors"
	"github.com/aulavista/horarios-api/pkg/response"
)

// SnapshotHandler exposes whole-state backup and restore.
type SnapshotHandler struct {
	snapshots *service.SnapshotService
}

// NewSnapshotHandler constructs a SnapshotHandler.
func NewSnapshotHandler(snapshots *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots}
}

// Export godoc
// @Summary Download the full application state
// @Tags Snapshot
// @Produce json
// @Success 200 {object} dto.Snapshot
// @Router /snapshot [get]
func (h *SnapshotHandler) Export(c *gin.Context) {
	snapshot, err := h.snapshots.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	// Served raw, not enveloped: the document is the backup file itself.
	name := fmt.Sprintf("horarios-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.JSON(http.StatusOK, snapshot)
}

// Import godoc
// @Summary Restore the application state from a snapshot
// @Tags Snapshot
// @Accept json
// @Produce json
// @Param payload body dto.SnapshotImport true "Snapshot document"
// @Success 200 {object} response.Envelope
// @Router /snapshot [post]
func (h *SnapshotHandler) Import(c *gin.Context) {
	var payload dto.SnapshotImport
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid snapshot document"))
		return
	}
	if err := h.snapshots.Import(c.Request.Context(), payload); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"restored": true})
}
