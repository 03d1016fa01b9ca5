package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aulavista/horarios-api/internal/dto"
	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/internal/service"
	appErrors "github.com/aulavista/horarios-api/pkg/errors"
	"github.com/aulavista/horarios-api/pkg/response"
)

// GroupHandler wires class group endpoints. Group names appear in URLs, so
// path parameters are the raw group keys.
type GroupHandler struct {
	groups *service.GroupService
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// groupView adds the map key as an explicit name field; Group itself omits
// it from JSON.
type groupView struct {
	Name string `json:"name"`
	models.Group
}

func viewOf(g models.Group) groupView {
	return groupView{Name: g.Key, Group: g}
}

// List godoc
// @Summary List groups in display order
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	groups := h.groups.List(c.Request.Context())
	views := make([]groupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, viewOf(g))
	}
	response.JSON(c, http.StatusOK, views)
}

// Get godoc
// @Summary Get a group
// @Tags Groups
// @Produce json
// @Param name path string true "Group name"
// @Success 200 {object} response.Envelope
// @Router /groups/{name} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, viewOf(group))
}

// Create godoc
// @Summary Create a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body dto.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload"))
		return
	}
	group, err := h.groups.Create(c.Request.Context(), req.Name, req.TutorID, req.Order)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, viewOf(group))
}

// Rename godoc
// @Summary Rename a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param name path string true "Group name"
// @Param payload body dto.RenameGroupRequest true "New name"
// @Success 200 {object} response.Envelope
// @Router /groups/{name}/rename [post]
func (h *GroupHandler) Rename(c *gin.Context) {
	var req dto.RenameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload"))
		return
	}
	group, err := h.groups.Rename(c.Request.Context(), c.Param("name"), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, viewOf(group))
}

// Update godoc
// @Summary Update tutor or display order
// @Tags Groups
// @Accept json
// @Produce json
// @Param name path string true "Group name"
// @Param payload body dto.UpdateGroupRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /groups/{name} [patch]
func (h *GroupHandler) Update(c *gin.Context) {
	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload"))
		return
	}
	group, err := h.groups.Update(c.Request.Context(), c.Param("name"), req.TutorID, req.Order)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, viewOf(group))
}

// Delete godoc
// @Summary Delete a group and its schedule entry
// @Tags Groups
// @Param name path string true "Group name"
// @Success 204
// @Router /groups/{name} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.groups.Delete(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetSubject godoc
// @Summary Assign a subject with weekly hours and teacher
// @Tags Groups
// @Accept json
// @Produce json
// @Param name path string true "Group name"
// @Param subject path string true "Subject name"
// @Param payload body dto.SubjectRequirementRequest true "Requirement"
// @Success 200 {object} response.Envelope
// @Router /groups/{name}/subjects/{subject} [put]
func (h *GroupHandler) SetSubject(c *gin.Context) {
	var req dto.SubjectRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid requirement payload"))
		return
	}
	group, err := h.groups.SetSubjectRequirement(c.Request.Context(), c.Param("name"), c.Param("subject"), req.TeacherID, req.WeeklyHours)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, viewOf(group))
}

// RemoveSubject godoc
// @Summary Drop a subject from a group
// @Tags Groups
// @Param name path string true "Group name"
// @Param subject path string true "Subject name"
// @Success 200 {object} response.Envelope
// @Router /groups/{name}/subjects/{subject} [delete]
func (h *GroupHandler) RemoveSubject(c *gin.Context) {
	group, err := h.groups.RemoveSubjectRequirement(c.Request.Context(), c.Param("name"), c.Param("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, viewOf(group))
}
