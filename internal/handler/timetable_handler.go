package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aulavista/horarios-api/internal/dto"
	"github.com/aulavista/horarios-api/internal/service"
	appErrors "github.com/aulavista/horarios-api/pkg/errors"
	"github.com/aulavista/horarios-api/pkg/response"
)

// TimetableHandler wires the placement engine to HTTP routes.
type TimetableHandler struct {
	timetable *service.TimetableService
	metrics   *service.MetricsService
}

// NewTimetableHandler constructs a TimetableHandler. metrics may be nil.
func NewTimetableHandler(timetable *service.TimetableService, metrics *service.MetricsService) *TimetableHandler {
	return &TimetableHandler{timetable: timetable, metrics: metrics}
}

// Full godoc
// @Summary Whole schedule across all groups
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Full(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.timetable.Full(c.Request.Context()))
}

// Get godoc
// @Summary Weekly timetable of a group
// @Tags Timetable
// @Produce json
// @Param name path string true "Group name"
// @Success 200 {object} response.Envelope
// @Router /groups/{name}/timetable [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	view, err := h.timetable.Timetable(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Place godoc
// @Summary Place a class block
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.PlaceRequest true "Placement"
// @Success 201 {object} response.Envelope
// @Router /timetable/place [post]
func (h *TimetableHandler) Place(c *gin.Context) {
	var req dto.PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrEmptySelection.Code, appErrors.ErrEmptySelection.Status, appErrors.ErrEmptySelection.Message))
		return
	}
	resp, err := h.timetable.Place(c.Request.Context(), req)
	if err != nil {
		h.recordPlacement(err)
		response.Error(c, err)
		return
	}
	h.recordPlacement(nil)
	response.Created(c, resp)
}

// Remove godoc
// @Summary Remove a class block by any of its items
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.RemoveRequest true "Removal"
// @Success 200 {object} response.Envelope
// @Router /timetable/remove [post]
func (h *TimetableHandler) Remove(c *gin.Context) {
	var req dto.RemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid removal payload"))
		return
	}
	resp, err := h.timetable.Remove(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

func (h *TimetableHandler) recordPlacement(err error) {
	if h.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = appErrors.FromError(err).Code
	}
	h.metrics.RecordPlacement(outcome)
}
