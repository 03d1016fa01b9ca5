package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/internal/repository"
	"github.com/aulavista/horarios-api/internal/service"
	"github.com/aulavista/horarios-api/internal/timegrid"
	"github.com/aulavista/horarios-api/pkg/blobstore"
	"github.com/aulavista/horarios-api/pkg/config"
)

type testEnv struct {
	router    *gin.Engine
	store     *blobstore.MemoryStore
	data      *service.DataService
	teachers  *service.TeacherService
	groups    *service.GroupService
	timetable *service.TimetableService
}

// newTestEnv builds a router with the full route table over an in-memory
// store and auth disabled.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := blobstore.NewMemoryStore()
	logger := zap.NewNop()
	grid, err := timegrid.New(config.SchoolConfig{
		DayStart:     "09:00",
		DayEnd:       "14:00",
		SlotInterval: 15 * time.Minute,
		BreakStart:   "12:00",
		BreakEnd:     "12:30",
		SlotCapacity: 2,
	})
	require.NoError(t, err)

	data := service.NewDataService(grid, 2,
		repository.NewTeacherRepository(store, logger),
		repository.NewGroupRepository(store, logger),
		repository.NewScheduleRepository(store, logger),
		logger)
	require.NoError(t, data.Initialize(context.Background()))

	teachers := service.NewTeacherService(data, logger)
	groups := service.NewGroupService(data, logger)
	timetable := service.NewTimetableService(data, logger)
	conflicts := service.NewConflictService(data, nil, logger)
	snapshots := service.NewSnapshotService(data, store, logger)

	teacherHandler := NewTeacherHandler(teachers)
	groupHandler := NewGroupHandler(groups)
	timetableHandler := NewTimetableHandler(timetable, nil)
	conflictHandler := NewConflictHandler(conflicts)
	snapshotHandler := NewSnapshotHandler(snapshots)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/teachers", teacherHandler.List)
	api.POST("/teachers", teacherHandler.Create)
	api.GET("/teachers/:id", teacherHandler.Get)
	api.PUT("/teachers/:id", teacherHandler.Rename)
	api.DELETE("/teachers/:id", teacherHandler.Delete)
	api.GET("/groups", groupHandler.List)
	api.POST("/groups", groupHandler.Create)
	api.GET("/groups/:name", groupHandler.Get)
	api.DELETE("/groups/:name", groupHandler.Delete)
	api.POST("/groups/:name/rename", groupHandler.Rename)
	api.PUT("/groups/:name/subjects/:subject", groupHandler.SetSubject)
	api.DELETE("/groups/:name/subjects/:subject", groupHandler.RemoveSubject)
	api.GET("/groups/:name/timetable", timetableHandler.Get)
	api.GET("/timetable", timetableHandler.Full)
	api.POST("/timetable/place", timetableHandler.Place)
	api.POST("/timetable/remove", timetableHandler.Remove)
	api.GET("/conflicts", conflictHandler.List)
	api.GET("/snapshot", snapshotHandler.Export)
	api.POST("/snapshot", snapshotHandler.Import)

	return &testEnv{
		router:    r,
		store:     store,
		data:      data,
		teachers:  teachers,
		groups:    groups,
		timetable: timetable,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		blob, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(blob)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func (e *testEnv) seedTeacher(t *testing.T, name string) models.Teacher {
	t.Helper()
	teacher, err := e.teachers.Add(context.Background(), name)
	require.NoError(t, err)
	return teacher
}

func (e *testEnv) seedGroupWithSubject(t *testing.T, group, subject, teacherID string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.groups.Create(ctx, group, "", 0)
	require.NoError(t, err)
	_, err = e.groups.SetSubjectRequirement(ctx, group, subject, teacherID, 4)
	require.NoError(t, err)
}
