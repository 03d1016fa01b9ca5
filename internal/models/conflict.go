package models

// ConflictOccurrence names one class block involved in a double booking.
type ConflictOccurrence struct {
	Group   string `json:"group"`
	Subject string `json:"subject"`
}

// Conflict reports a teacher booked in two or more class blocks covering the
// same day and slot. Conflicts are derived warnings, never persisted, and
// never block further edits.
type Conflict struct {
	TeacherID   string               `json:"teacher_id"`
	TeacherName string               `json:"teacher_name"`
	Day         string               `json:"day"`
	Slot        string               `json:"slot"`
	Occurrences []ConflictOccurrence `json:"occurrences"`
}
