package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/internal/repository"
	"github.com/aulavista/horarios-api/internal/timegrid"
	"github.com/aulavista/horarios-api/pkg/blobstore"
	"github.com/aulavista/horarios-api/pkg/config"
)

func schoolConfig() config.SchoolConfig {
	return config.SchoolConfig{
		DayStart:     "09:00",
		DayEnd:       "14:00",
		SlotInterval: 15 * time.Minute,
		BreakStart:   "12:00",
		BreakEnd:     "12:30",
		SlotCapacity: 2,
	}
}

type fixture struct {
	store *blobstore.MemoryStore
	data  *DataService
}

// newFixture builds a DataService over an in-memory store, optionally
// pre-seeding blobs before Initialize runs.
func newFixture(t *testing.T, seed map[string]interface{}) *fixture {
	t.Helper()

	store := blobstore.NewMemoryStore()
	ctx := context.Background()
	for key, value := range seed {
		blob, err := json.Marshal(value)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, key, blob))
	}

	grid, err := timegrid.New(schoolConfig())
	require.NoError(t, err)

	logger := zap.NewNop()
	data := NewDataService(grid, 2,
		repository.NewTeacherRepository(store, logger),
		repository.NewGroupRepository(store, logger),
		repository.NewScheduleRepository(store, logger),
		logger)
	require.NoError(t, data.Initialize(ctx))
	return &fixture{store: store, data: data}
}

func (f *fixture) addTeacher(t *testing.T, name string) models.Teacher {
	t.Helper()
	svc := NewTeacherService(f.data, nil)
	teacher, err := svc.Add(context.Background(), name)
	require.NoError(t, err)
	return teacher
}

func (f *fixture) addGroup(t *testing.T, name string) models.Group {
	t.Helper()
	svc := NewGroupService(f.data, nil)
	group, err := svc.Create(context.Background(), name, "", 0)
	require.NoError(t, err)
	return group
}

func (f *fixture) assignSubject(t *testing.T, group, subject, teacherID string, hours float64) {
	t.Helper()
	svc := NewGroupService(f.data, nil)
	_, err := svc.SetSubjectRequirement(context.Background(), group, subject, teacherID, hours)
	require.NoError(t, err)
}
