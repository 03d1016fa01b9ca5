package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleItemWireShape(t *testing.T) {
	start := NewStartItem("id-1", "Mates", "t-1", 1, time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC))
	data, err := json.Marshal(start)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"id-1","subject":"Mates","teacher":"t-1","duration":1,"isStart":true,"createdAt":"2025-09-01T08:00:00Z"}`, string(data))

	cont := NewContinuationItem("id-2", "id-1", "09:00")
	data, err = json.Marshal(cont)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"id-2","parentId":"id-1","isContinuation":true,"startTime":"09:00"}`, string(data))
}

func TestScheduleItemDecodesLegacyPayload(t *testing.T) {
	var item ScheduleItem
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","subject":"Inglés","teacher":"Smith","duration":0.5,"isStart":true,"createdAt":"not-a-date"}`), &item))
	assert.True(t, item.IsStart())
	assert.Equal(t, "Smith", item.TeacherID)
	assert.True(t, item.CreatedAt.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`{"id":"b","isContinuation":true,"startTime":"09:00"}`), &item))
	assert.Equal(t, ItemContinuation, item.Kind)
	assert.Empty(t, item.ParentID)
	assert.Equal(t, "09:00", item.StartSlot)
}

func newTestSchedule() *Schedule {
	days := []string{"Lunes", "Martes"}
	slots := []string{"09:00", "09:15", "09:30"}
	return NewSchedule(days, slots)
}

func TestScheduleEnsureGroupIsIdempotent(t *testing.T) {
	s := newTestSchedule()
	s.EnsureGroup("1A")
	s.Append("1A", "Lunes", "09:00", NewStartItem("x", "Mates", "t-1", 0.25, time.Now()))

	s.EnsureGroup("1A")
	assert.Equal(t, 1, s.Count("1A", "Lunes", "09:00"))
	assert.True(t, s.HasGroup("1A"))
	assert.False(t, s.HasGroup("1B"))
}

func TestScheduleRemoveIDs(t *testing.T) {
	s := newTestSchedule()
	s.Append("1A", "Lunes", "09:00", NewStartItem("a", "Mates", "t-1", 0.5, time.Now()))
	s.Append("1A", "Lunes", "09:15", NewContinuationItem("b", "a", "09:00"))
	s.Append("1A", "Lunes", "09:00", NewStartItem("c", "Inglés", "t-2", 0.25, time.Now()))

	removed := s.RemoveIDs("1A", "Lunes", map[string]struct{}{"a": {}, "b": {}})
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, s.Count("1A", "Lunes", "09:00"))
	assert.Equal(t, 0, s.Count("1A", "Lunes", "09:15"))

	// Unknown ids are a no-op.
	assert.Zero(t, s.RemoveIDs("1A", "Lunes", map[string]struct{}{"zz": {}}))
}

func TestScheduleRenameGroupMovesCells(t *testing.T) {
	s := newTestSchedule()
	s.Append("1A", "Martes", "09:30", NewStartItem("a", "Mates", "t-1", 0.25, time.Now()))

	s.RenameGroup("1A", "2A")
	assert.False(t, s.HasGroup("1A"))
	assert.True(t, s.HasGroup("2A"))
	assert.Equal(t, 1, s.Count("2A", "Martes", "09:30"))
}

func TestScheduleGroupsSorted(t *testing.T) {
	s := newTestSchedule()
	s.EnsureGroup("2B")
	s.EnsureGroup("1A")
	assert.Equal(t, []string{"1A", "2B"}, s.Groups())
}
