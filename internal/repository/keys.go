package repository

// Storage keys of the three collection snapshots. Kept identical to the keys
// earlier versions of the application wrote so existing data loads unchanged.
const (
	KeyTeachers  = "horariosTeachers"
	KeyGroups    = "horariosGroups"
	KeySchedules = "horariosSchedules"
)
