package models

// Teacher is an instructor record. ID is the stable opaque identifier used as
// the foreign key everywhere (group tutor, subject requirements, schedule
// items); Code is the short display code shown on grids and Name the unique
// display name. Renaming a teacher therefore never cascades.
type Teacher struct {
	ID   string `json:"id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
}
