package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulavista/horarios-api/internal/dto"
	"github.com/aulavista/horarios-api/internal/models"
	appErrors "github.com/aulavista/horarios-api/pkg/errors"
)

func placeReq(group, day, slot, subject, teacherID string, duration float64) dto.PlaceRequest {
	return dto.PlaceRequest{
		Group:     group,
		Day:       day,
		Slot:      slot,
		Subject:   subject,
		TeacherID: teacherID,
		Duration:  duration,
	}
}

// placementFixture seeds one teacher, one group and one assigned subject.
func placementFixture(t *testing.T) (*fixture, *TimetableService, string) {
	t.Helper()
	f := newFixture(t, nil)
	teacher := f.addTeacher(t, "Carlos Ruiz")
	f.addGroup(t, "1A")
	f.assignSubject(t, "1A", "Lengua", teacher.ID, 4)
	return f, NewTimetableService(f.data, nil), teacher.ID
}

func TestPlaceSingleHourBlock(t *testing.T) {
	_, svc, teacherID := placementFixture(t)

	resp, err := svc.Place(context.Background(), placeReq("1A", "Lunes", "09:00", "Lengua", teacherID, 1))
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00", "09:15", "09:30", "09:45"}, resp.Slots)
	assert.True(t, resp.Start.IsStart())
	require.Len(t, resp.Continuations, 3)
	for _, cont := range resp.Continuations {
		assert.False(t, cont.IsStart())
		assert.Equal(t, resp.Start.ID, cont.ParentID)
		assert.Equal(t, "09:00", cont.StartSlot)
	}
}

func TestPlaceEmptySelection(t *testing.T) {
	_, svc, teacherID := placementFixture(t)

	_, err := svc.Place(context.Background(), placeReq("1A", "Lunes", "", "Lengua", teacherID, 1))
	assert.True(t, appErrors.Is(err, appErrors.ErrEmptySelection))
}

func TestPlaceWrongTeacher(t *testing.T) {
	f, svc, _ := placementFixture(t)
	other := f.addTeacher(t, "Ana Gil")

	_, err := svc.Place(context.Background(), placeReq("1A", "Lunes", "09:00", "Lengua", other.ID, 1))
	assert.True(t, appErrors.Is(err, appErrors.ErrWrongTeacher))
}

func TestPlaceSubjectNotAssigned(t *testing.T) {
	_, svc, teacherID := placementFixture(t)

	_, err := svc.Place(context.Background(), placeReq("1A", "Lunes", "09:00", "Inglés", teacherID, 1))
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestPlaceExceedsClosingTime(t *testing.T) {
	_, svc, teacherID := placementFixture(t)

	// A one hour block starting at 13:15 would run past 14:00.
	_, err := svc.Place(context.Background(), placeReq("1A", "Lunes", "13:15", "Lengua", teacherID, 1))
	assert.True(t, appErrors.Is(err, appErrors.ErrExceedsClosingTime))

	_, err = svc.Place(context.Background(), placeReq("1A", "Lunes", "13:00", "Lengua", teacherID, 1))
	require.NoError(t, err)
}

func TestPlaceOverlapsBreak(t *testing.T) {
	_, svc, teacherID := placementFixture(t)

	_, err := svc.Place(context.Background(), placeReq("1A", "Lunes", "11:30", "Lengua", teacherID, 1))
	assert.True(t, appErrors.Is(err, appErrors.ErrOverlapsBreak))

	// Right up against the break is fine.
	_, err = svc.Place(context.Background(), placeReq("1A", "Lunes", "11:00", "Lengua", teacherID, 1))
	require.NoError(t, err)
}

func TestPlaceSlotCapacity(t *testing.T) {
	f, svc, teacherID := placementFixture(t)
	ctx := context.Background()

	second := f.addTeacher(t, "Ana Gil")
	third := f.addTeacher(t, "Luis Vega")
	f.assignSubject(t, "1A", "Matemáticas", second.ID, 4)
	f.assignSubject(t, "1A", "Inglés", third.ID, 2)

	_, err := svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Lengua", teacherID, 1))
	require.NoError(t, err)
	_, err = svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Matemáticas", second.ID, 1))
	require.NoError(t, err)

	_, err = svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Inglés", third.ID, 1))
	assert.True(t, appErrors.Is(err, appErrors.ErrSlotFull))

	// Partial overlap hits the cap too.
	_, err = svc.Place(ctx, placeReq("1A", "Lunes", "09:45", "Inglés", third.ID, 1))
	assert.True(t, appErrors.Is(err, appErrors.ErrSlotFull))
}

func TestPlaceRejectionLeavesGridUntouched(t *testing.T) {
	f, svc, teacherID := placementFixture(t)

	_, err := svc.Place(context.Background(), placeReq("1A", "Lunes", "11:30", "Lengua", teacherID, 1))
	require.Error(t, err)

	f.data.mu.RLock()
	defer f.data.mu.RUnlock()
	for _, slot := range f.data.schedule.Slots() {
		assert.Empty(t, f.data.schedule.Items("1A", "Lunes", slot))
	}
}

func TestPlaceSameTeacherEditsInPlace(t *testing.T) {
	f, svc, teacherID := placementFixture(t)
	ctx := context.Background()
	f.assignSubject(t, "1A", "Matemáticas", teacherID, 3)

	_, err := svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Lengua", teacherID, 1))
	require.NoError(t, err)

	// Same teacher, same slot, shorter duration and a different subject:
	// one call swaps the old block for the new one.
	resp, err := svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Matemáticas", teacherID, 0.5))
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:15"}, resp.Slots)

	f.data.mu.RLock()
	defer f.data.mu.RUnlock()
	start := f.data.schedule.Items("1A", "Lunes", "09:00")
	require.Len(t, start, 1)
	assert.Equal(t, "Matemáticas", start[0].Subject)
	assert.Empty(t, f.data.schedule.Items("1A", "Lunes", "09:30"))
	assert.Empty(t, f.data.schedule.Items("1A", "Lunes", "09:45"))
}

func TestPlaceSameTeacherEditKeepsNeighbours(t *testing.T) {
	f, svc, teacherID := placementFixture(t)
	ctx := context.Background()
	other := f.addTeacher(t, "Ana Gil")
	f.assignSubject(t, "1A", "Matemáticas", other.ID, 4)

	neighbour, err := svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Matemáticas", other.ID, 1))
	require.NoError(t, err)
	_, err = svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Lengua", teacherID, 1))
	require.NoError(t, err)

	// Editing one teacher's block never touches the other's sharing the slot.
	_, err = svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Lengua", teacherID, 0.5))
	require.NoError(t, err)

	f.data.mu.RLock()
	defer f.data.mu.RUnlock()
	ids := make(map[string]bool)
	for _, item := range f.data.schedule.Items("1A", "Lunes", "09:00") {
		ids[item.ID] = true
	}
	assert.Len(t, ids, 2)
	assert.True(t, ids[neighbour.Start.ID])
}

func TestPlaceReplaceOntoOverlappingSlots(t *testing.T) {
	f, svc, teacherID := placementFixture(t)
	ctx := context.Background()
	other := f.addTeacher(t, "Ana Gil")
	f.assignSubject(t, "1A", "Matemáticas", other.ID, 4)

	first, err := svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Lengua", teacherID, 1))
	require.NoError(t, err)
	_, err = svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Matemáticas", other.ID, 1))
	require.NoError(t, err)

	// Shifting a block by one slot overlaps its own old span, and the slot
	// only holds a continuation of it there, so the swap must be named.
	// Without the replace exclusion this would be a full slot.
	req := placeReq("1A", "Lunes", "09:15", "Lengua", teacherID, 1)
	req.ReplaceID = first.Start.ID
	resp, err := svc.Place(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:15", "09:30", "09:45", "10:00"}, resp.Slots)
}

func TestPlaceReplaceUnknownBlock(t *testing.T) {
	_, svc, teacherID := placementFixture(t)

	req := placeReq("1A", "Lunes", "09:00", "Lengua", teacherID, 1)
	req.ReplaceID = "missing"
	_, err := svc.Place(context.Background(), req)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestRemoveWholeBlockViaContinuation(t *testing.T) {
	f, svc, teacherID := placementFixture(t)
	ctx := context.Background()

	placed, err := svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Lengua", teacherID, 1))
	require.NoError(t, err)

	resp, err := svc.Remove(ctx, dto.RemoveRequest{
		Group:  "1A",
		Day:    "Lunes",
		ItemID: placed.Continuations[1].ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Removed)

	f.data.mu.RLock()
	defer f.data.mu.RUnlock()
	for _, slot := range placed.Slots {
		assert.Empty(t, f.data.schedule.Items("1A", "Lunes", slot))
	}
}

// snapshotSlots copies one day's cell contents so before/after grids can be
// compared exactly.
func snapshotSlots(f *fixture, group, day string) map[string][]models.ScheduleItem {
	f.data.mu.RLock()
	defer f.data.mu.RUnlock()
	out := make(map[string][]models.ScheduleItem)
	for _, slot := range f.data.schedule.Slots() {
		out[slot] = append([]models.ScheduleItem(nil), f.data.schedule.Items(group, day, slot)...)
	}
	return out
}

func TestPlaceRemoveRestoresSharedSlots(t *testing.T) {
	f, svc, teacherID := placementFixture(t)
	ctx := context.Background()
	other := f.addTeacher(t, "Ana Gil")
	f.assignSubject(t, "1A", "Matemáticas", other.ID, 4)

	_, err := svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Matemáticas", other.ID, 1))
	require.NoError(t, err)

	before := snapshotSlots(f, "1A", "Lunes")

	placed, err := svc.Place(ctx, placeReq("1A", "Lunes", "09:00", "Lengua", teacherID, 1))
	require.NoError(t, err)
	resp, err := svc.Remove(ctx, dto.RemoveRequest{
		Group:  "1A",
		Day:    "Lunes",
		ItemID: placed.Start.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Removed)

	// The neighbouring block's items survive untouched in every shared slot.
	assert.Equal(t, before, snapshotSlots(f, "1A", "Lunes"))
}

func TestRemoveMissingItemIsNoOp(t *testing.T) {
	f, svc, _ := placementFixture(t)
	_ = f

	resp, err := svc.Remove(context.Background(), dto.RemoveRequest{
		Group:  "1A",
		Day:    "Lunes",
		ItemID: "missing",
	})
	require.NoError(t, err)
	assert.Zero(t, resp.Removed)
}

func TestTimetableView(t *testing.T) {
	_, svc, teacherID := placementFixture(t)
	ctx := context.Background()

	_, err := svc.Place(ctx, placeReq("1A", "Martes", "10:00", "Lengua", teacherID, 1))
	require.NoError(t, err)

	view, err := svc.Timetable(ctx, "1A")
	require.NoError(t, err)
	assert.Equal(t, "1A", view.Group)
	assert.Len(t, view.Days, 5)
	assert.Len(t, view.Slots, 20)
	assert.Len(t, view.Cells, 100)

	occupied := 0
	for _, cell := range view.Cells {
		occupied += len(cell.Items)
	}
	assert.Equal(t, 4, occupied)

	_, err = svc.Timetable(ctx, "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
