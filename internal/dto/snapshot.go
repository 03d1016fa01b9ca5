package dto

import (
	"encoding/json"
	"time"

	"github.com/aulavista/horarios-api/internal/models"
)

// SnapshotVersion is the literal tag written into exports. Imports only carry
// it for traceability; structural compatibility is not validated.
const SnapshotVersion = "3.0"

// Snapshot is the full-state export payload.
type Snapshot struct {
	Groups    map[string]models.Group `json:"groups"`
	Teachers  []models.Teacher        `json:"teachers"`
	Schedules json.RawMessage         `json:"schedules"`
	Timestamp time.Time               `json:"timestamp"`
	Version   string                  `json:"version"`
}

// SnapshotImport accepts arbitrary collection payloads: the three blobs
// replace the persisted store wholesale and the application state is reloaded
// through the usual repair/migration gate.
type SnapshotImport struct {
	Groups    json.RawMessage `json:"groups"`
	Teachers  json.RawMessage `json:"teachers"`
	Schedules json.RawMessage `json:"schedules"`
	Version   string          `json:"version"`
}
