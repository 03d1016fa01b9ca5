package models

import (
	"encoding/json"
	"sort"
	"time"
)

// ItemKind tags the two schedule item variants.
type ItemKind string

const (
	// ItemStart marks the first slot of a class block.
	ItemStart ItemKind = "start"
	// ItemContinuation marks every further slot the block occupies.
	ItemContinuation ItemKind = "continuation"
)

// ScheduleItem is the atomic unit inside a slot. Use the constructors: they
// are the only way to obtain a structurally valid item, so a continuation
// without a parent cannot exist in a live Schedule.
type ScheduleItem struct {
	ID            string
	Kind          ItemKind
	Subject       string
	TeacherID     string
	DurationHours float64
	ParentID      string
	StartSlot     string
	CreatedAt     time.Time
}

// NewStartItem builds the start marker of a class block.
func NewStartItem(id, subject, teacherID string, durationHours float64, createdAt time.Time) ScheduleItem {
	return ScheduleItem{
		ID:            id,
		Kind:          ItemStart,
		Subject:       subject,
		TeacherID:     teacherID,
		DurationHours: durationHours,
		CreatedAt:     createdAt,
	}
}

// NewContinuationItem builds a continuation marker pointing at its start item.
func NewContinuationItem(id, parentID, startSlot string) ScheduleItem {
	return ScheduleItem{
		ID:        id,
		Kind:      ItemContinuation,
		ParentID:  parentID,
		StartSlot: startSlot,
	}
}

// IsStart reports whether the item is a block start marker.
func (i ScheduleItem) IsStart() bool {
	return i.Kind == ItemStart
}

// scheduleItemJSON is the persisted wire shape. Field names match the blobs
// written by earlier versions of the application so stored data keeps
// decoding without a schema change.
type scheduleItemJSON struct {
	ID             string  `json:"id,omitempty"`
	Subject        string  `json:"subject,omitempty"`
	Teacher        string  `json:"teacher,omitempty"`
	Duration       float64 `json:"duration,omitempty"`
	IsStart        bool    `json:"isStart,omitempty"`
	IsContinuation bool    `json:"isContinuation,omitempty"`
	ParentID       string  `json:"parentId,omitempty"`
	StartTime      string  `json:"startTime,omitempty"`
	CreatedAt      string  `json:"createdAt,omitempty"`
}

// MarshalJSON encodes the item in the legacy-compatible wire shape.
func (i ScheduleItem) MarshalJSON() ([]byte, error) {
	wire := scheduleItemJSON{ID: i.ID}
	switch i.Kind {
	case ItemContinuation:
		wire.IsContinuation = true
		wire.ParentID = i.ParentID
		wire.StartTime = i.StartSlot
	default:
		wire.IsStart = true
		wire.Subject = i.Subject
		wire.Teacher = i.TeacherID
		wire.Duration = i.DurationHours
		if !i.CreatedAt.IsZero() {
			wire.CreatedAt = i.CreatedAt.UTC().Format(time.RFC3339)
		}
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes the legacy-compatible wire shape. The teacher field of
// historical blobs may hold a display name instead of an ID; the repository
// resolves those after decoding.
func (i *ScheduleItem) UnmarshalJSON(data []byte) error {
	var wire scheduleItemJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.IsContinuation {
		*i = NewContinuationItem(wire.ID, wire.ParentID, wire.StartTime)
		return nil
	}
	item := NewStartItem(wire.ID, wire.Subject, wire.Teacher, wire.Duration, time.Time{})
	if wire.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, wire.CreatedAt); err == nil {
			item.CreatedAt = ts
		}
	}
	*i = item
	return nil
}

// SlotKey addresses one cell of the timetable.
type SlotKey struct {
	Group string
	Day   string
	Slot  string
}

// Schedule is the core aggregate: a flat store keyed by (group, day, slot)
// holding the item list of every cell. Cells are created eagerly per group so
// a lookup can never observe a missing or non-list value.
type Schedule struct {
	days  []string
	slots []string
	cells map[SlotKey][]ScheduleItem
}

// NewSchedule builds an empty schedule over the given day and slot grids.
func NewSchedule(days, slots []string) *Schedule {
	return &Schedule{
		days:  append([]string(nil), days...),
		slots: append([]string(nil), slots...),
		cells: make(map[SlotKey][]ScheduleItem),
	}
}

// Days returns the day grid the schedule was built with.
func (s *Schedule) Days() []string {
	return append([]string(nil), s.days...)
}

// Slots returns the slot grid the schedule was built with.
func (s *Schedule) Slots() []string {
	return append([]string(nil), s.slots...)
}

// EnsureGroup creates the full day×slot skeleton for the group when missing.
// It never touches cells that already exist.
func (s *Schedule) EnsureGroup(group string) {
	for _, day := range s.days {
		for _, slot := range s.slots {
			key := SlotKey{Group: group, Day: day, Slot: slot}
			if _, ok := s.cells[key]; !ok {
				s.cells[key] = []ScheduleItem{}
			}
		}
	}
}

// HasGroup reports whether the group has a schedule entry.
func (s *Schedule) HasGroup(group string) bool {
	if len(s.days) == 0 || len(s.slots) == 0 {
		return false
	}
	_, ok := s.cells[SlotKey{Group: group, Day: s.days[0], Slot: s.slots[0]}]
	return ok
}

// Groups lists the group keys present, sorted for stable iteration.
func (s *Schedule) Groups() []string {
	seen := make(map[string]struct{})
	for key := range s.cells {
		seen[key.Group] = struct{}{}
	}
	groups := make([]string, 0, len(seen))
	for group := range seen {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}

// Items returns a copy of the cell's item list.
func (s *Schedule) Items(group, day, slot string) []ScheduleItem {
	items := s.cells[SlotKey{Group: group, Day: day, Slot: slot}]
	out := make([]ScheduleItem, len(items))
	copy(out, items)
	return out
}

// Count returns how many items occupy the cell.
func (s *Schedule) Count(group, day, slot string) int {
	return len(s.cells[SlotKey{Group: group, Day: day, Slot: slot}])
}

// Append adds an item to the cell, creating the group skeleton when needed.
func (s *Schedule) Append(group, day, slot string, item ScheduleItem) {
	s.EnsureGroup(group)
	key := SlotKey{Group: group, Day: day, Slot: slot}
	s.cells[key] = append(s.cells[key], item)
}

// RemoveIDs drops every item of the (group, day) pair whose id is in ids and
// returns how many items were removed.
func (s *Schedule) RemoveIDs(group, day string, ids map[string]struct{}) int {
	removed := 0
	for _, slot := range s.slots {
		key := SlotKey{Group: group, Day: day, Slot: slot}
		items, ok := s.cells[key]
		if !ok {
			continue
		}
		kept := items[:0]
		for _, item := range items {
			if _, drop := ids[item.ID]; drop {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		s.cells[key] = kept
	}
	return removed
}

// RenameGroup moves the group's cells from old to new, replacing whatever the
// new key held.
func (s *Schedule) RenameGroup(oldKey, newKey string) {
	if oldKey == newKey {
		return
	}
	s.DeleteGroup(newKey)
	for _, day := range s.days {
		for _, slot := range s.slots {
			from := SlotKey{Group: oldKey, Day: day, Slot: slot}
			if items, ok := s.cells[from]; ok {
				s.cells[SlotKey{Group: newKey, Day: day, Slot: slot}] = items
				delete(s.cells, from)
			}
		}
	}
}

// DeleteGroup removes every cell of the group.
func (s *Schedule) DeleteGroup(group string) {
	for key := range s.cells {
		if key.Group == group {
			delete(s.cells, key)
		}
	}
}

// MarshalJSON encodes the schedule in the persisted nested shape
// (group → day → slot → item list) with every cell present, empty ones as
// empty lists.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	nested := make(map[string]map[string]map[string][]ScheduleItem)
	s.Walk(func(group, day, slot string, items []ScheduleItem) {
		if nested[group] == nil {
			nested[group] = make(map[string]map[string][]ScheduleItem)
		}
		if nested[group][day] == nil {
			nested[group][day] = make(map[string][]ScheduleItem)
		}
		if items == nil {
			items = []ScheduleItem{}
		}
		nested[group][day][slot] = items
	})
	return json.Marshal(nested)
}

// Walk visits every cell in deterministic group/day/slot order.
func (s *Schedule) Walk(fn func(group, day, slot string, items []ScheduleItem)) {
	for _, group := range s.Groups() {
		for _, day := range s.days {
			for _, slot := range s.slots {
				fn(group, day, slot, s.cells[SlotKey{Group: group, Day: day, Slot: slot}])
			}
		}
	}
}
