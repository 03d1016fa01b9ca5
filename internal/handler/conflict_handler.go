package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aulavista/horarios-api/internal/service"
	"github.com/aulavista/horarios-api/pkg/response"
)

// ConflictHandler exposes the double booking report.
type ConflictHandler struct {
	conflicts *service.ConflictService
}

// NewConflictHandler constructs a ConflictHandler.
func NewConflictHandler(conflicts *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{conflicts: conflicts}
}

// List godoc
// @Summary Teacher double bookings across all groups
// @Tags Conflicts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /conflicts [get]
func (h *ConflictHandler) List(c *gin.Context) {
	conflicts := h.conflicts.Detect(c.Request.Context())
	response.JSON(c, http.StatusOK, conflicts, map[string]interface{}{"count": len(conflicts)})
}
