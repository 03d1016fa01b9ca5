package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/dto"
	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/internal/repository"
	"github.com/aulavista/horarios-api/pkg/blobstore"
	appErrors "github.com/aulavista/horarios-api/pkg/errors"
)

// SnapshotService exports and imports the full application state as one
// versioned document. Imports replace the persisted blobs wholesale and then
// reload through the normal repair and migration path, so even old payloads
// come back in upgraded.
type SnapshotService struct {
	data   *DataService
	store  blobstore.Store
	logger *zap.Logger
}

// NewSnapshotService constructs a SnapshotService.
func NewSnapshotService(data *DataService, store blobstore.Store, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{data: data, store: store, logger: logger}
}

// Export returns the complete state with a timestamp and version tag.
func (s *SnapshotService) Export(ctx context.Context) (*dto.Snapshot, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	schedules, err := json.Marshal(s.data.schedule)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode schedule")
	}
	groups := make(map[string]models.Group, len(s.data.groups))
	for key, group := range s.data.groups {
		groups[key] = group
	}
	teachers := make([]models.Teacher, len(s.data.teachers))
	copy(teachers, s.data.teachers)

	return &dto.Snapshot{
		Groups:    groups,
		Teachers:  teachers,
		Schedules: schedules,
		Timestamp: time.Now().UTC(),
		Version:   dto.SnapshotVersion,
	}, nil
}

// Import overwrites the persisted collections with the payload and reloads
// the application state from them. Absent collections clear their blob.
func (s *SnapshotService) Import(ctx context.Context, payload dto.SnapshotImport) error {
	if err := s.writeBlob(ctx, repository.KeyTeachers, payload.Teachers); err != nil {
		return err
	}
	if err := s.writeBlob(ctx, repository.KeyGroups, payload.Groups); err != nil {
		return err
	}
	if err := s.writeBlob(ctx, repository.KeySchedules, payload.Schedules); err != nil {
		return err
	}

	if err := s.data.Initialize(ctx); err != nil {
		return err
	}
	s.logger.Info("snapshot imported", zap.String("version", payload.Version))
	return nil
}

func (s *SnapshotService) writeBlob(ctx context.Context, key string, raw json.RawMessage) error {
	var err error
	if len(raw) == 0 || string(raw) == "null" {
		err = s.store.Delete(ctx, key)
	} else {
		err = s.store.Put(ctx, key, raw)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to write snapshot blob")
	}
	return nil
}
