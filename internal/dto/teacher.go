package dto

// CreateTeacherRequest registers a new teacher.
type CreateTeacherRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

// RenameTeacherRequest changes a teacher's display name. Schedules keep
// referencing the teacher through its stable ID, so no cascade happens.
type RenameTeacherRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

// CreateGroupRequest registers a new class group.
type CreateGroupRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=50"`
	TutorID string `json:"tutorId,omitempty"`
	Order   int    `json:"orden,omitempty"`
}

// RenameGroupRequest renames a group, moving its schedule entry along.
type RenameGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

// UpdateGroupRequest changes tutor or ordering.
type UpdateGroupRequest struct {
	TutorID *string `json:"tutorId,omitempty"`
	Order   *int    `json:"orden,omitempty"`
}

// SubjectRequirementRequest sets the weekly hours a subject needs in a group.
type SubjectRequirementRequest struct {
	TeacherID   string  `json:"teacherId" binding:"required"`
	WeeklyHours float64 `json:"hours" binding:"required,gt=0,lte=10"`
}
