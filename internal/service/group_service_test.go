package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/aulavista/horarios-api/pkg/errors"
)

func TestGroupServiceCreateOpensScheduleEntry(t *testing.T) {
	f := newFixture(t, nil)
	svc := NewGroupService(f.data, nil)
	ctx := context.Background()

	group, err := svc.Create(ctx, "1A", "", 1)
	require.NoError(t, err)
	assert.Equal(t, "1A", group.Key)

	f.data.mu.RLock()
	defer f.data.mu.RUnlock()
	assert.True(t, f.data.schedule.HasGroup("1A"))
}

func TestGroupServiceCreateRejectsDuplicates(t *testing.T) {
	f := newFixture(t, nil)
	svc := NewGroupService(f.data, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "1A", "", 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "1A", "", 2)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateName))
}

func TestGroupServiceCreateUnknownTutor(t *testing.T) {
	f := newFixture(t, nil)
	svc := NewGroupService(f.data, nil)

	_, err := svc.Create(context.Background(), "1A", "missing", 1)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestGroupServiceListOrder(t *testing.T) {
	f := newFixture(t, nil)
	svc := NewGroupService(f.data, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "2B", "", 2)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "1A", "", 1)
	require.NoError(t, err)

	list := svc.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "1A", list[0].Key)
	assert.Equal(t, "2B", list[1].Key)
}

func TestGroupServiceRenameMovesScheduleEntry(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.addTeacher(t, "Carlos Ruiz")
	f.addGroup(t, "1A")
	f.assignSubject(t, "1A", "Lengua", teacher.ID, 4)

	timetable := NewTimetableService(f.data, nil)
	_, err := timetable.Place(context.Background(), placeReq("1A", "Lunes", "09:00", "Lengua", teacher.ID, 1))
	require.NoError(t, err)

	svc := NewGroupService(f.data, nil)
	renamed, err := svc.Rename(context.Background(), "1A", "1A bis")
	require.NoError(t, err)
	assert.Equal(t, "1A bis", renamed.Key)

	f.data.mu.RLock()
	defer f.data.mu.RUnlock()
	assert.False(t, f.data.schedule.HasGroup("1A"))
	require.True(t, f.data.schedule.HasGroup("1A bis"))
	assert.Len(t, f.data.schedule.Items("1A bis", "Lunes", "09:00"), 1)
}

func TestGroupServiceDeleteDropsScheduleEntry(t *testing.T) {
	f := newFixture(t, nil)
	f.addGroup(t, "1A")

	svc := NewGroupService(f.data, nil)
	require.NoError(t, svc.Delete(context.Background(), "1A"))

	f.data.mu.RLock()
	defer f.data.mu.RUnlock()
	assert.NotContains(t, f.data.groups, "1A")
	assert.False(t, f.data.schedule.HasGroup("1A"))
}

func TestGroupServiceSubjectRequirements(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.addTeacher(t, "Carlos Ruiz")
	f.addGroup(t, "1A")
	svc := NewGroupService(f.data, nil)
	ctx := context.Background()

	group, err := svc.SetSubjectRequirement(ctx, "1A", "Lengua", teacher.ID, 4)
	require.NoError(t, err)
	req, ok := group.Requirement("Lengua")
	require.True(t, ok)
	assert.Equal(t, teacher.ID, req.TeacherID)
	assert.Equal(t, 4.0, req.WeeklyHours)

	_, err = svc.SetSubjectRequirement(ctx, "1A", "Lengua", "missing", 4)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	group, err = svc.RemoveSubjectRequirement(ctx, "1A", "Lengua")
	require.NoError(t, err)
	_, ok = group.Requirement("Lengua")
	assert.False(t, ok)
}
