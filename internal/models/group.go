package models

// SubjectRequirement binds a subject taught in a group to its teacher and the
// weekly hours the curriculum demands.
type SubjectRequirement struct {
	TeacherID   string  `json:"teacherId"`
	WeeklyHours float64 `json:"hours"`
}

// Group is a class/cohort. The display name doubles as the map key and the
// storage key of the group's schedule entry.
type Group struct {
	Key      string                        `json:"-"`
	TutorID  string                        `json:"tutorId"`
	Order    int                           `json:"orden"`
	Subjects map[string]SubjectRequirement `json:"subjects"`
}

// Requirement returns the subject requirement if the subject is taught in the
// group.
func (g Group) Requirement(subject string) (SubjectRequirement, bool) {
	req, ok := g.Subjects[subject]
	return req, ok
}

// ReferencesTeacher reports whether the teacher is the group's tutor or is
// assigned to any subject requirement.
func (g Group) ReferencesTeacher(teacherID string) bool {
	if g.TutorID == teacherID {
		return true
	}
	for _, req := range g.Subjects {
		if req.TeacherID == teacherID {
			return true
		}
	}
	return false
}
