package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/dto"
	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/internal/repository"
	"github.com/aulavista/horarios-api/internal/timegrid"
	appErrors "github.com/aulavista/horarios-api/pkg/errors"
)

// TimetableService is the placement engine. A class block spans one or more
// consecutive slots on a single day: the first slot holds the start item, the
// rest hold continuation markers pointing back at it. Validation happens
// entirely before any slot is touched, so a rejected placement leaves the
// grid unchanged.
type TimetableService struct {
	data   *DataService
	logger *zap.Logger
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(data *DataService, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{data: data, logger: logger}
}

// Place puts a class block onto the grid. When the same teacher already
// starts a block at the target slot, that block is swapped out in the same
// operation, so a duration or subject change is a single call. ReplaceID
// names the block to swap explicitly, which also covers moving a block onto
// slots it already occupies; either way the replaced block's slots do not
// count against capacity.
func (s *TimetableService) Place(ctx context.Context, req dto.PlaceRequest) (*dto.PlaceResponse, error) {
	if req.Group == "" || req.Subject == "" || req.Slot == "" {
		return nil, appErrors.ErrEmptySelection
	}
	if !timegrid.IsDay(req.Day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown day")
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	group, ok := s.data.groups[req.Group]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	requirement, ok := group.Requirement(req.Subject)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not assigned to this group")
	}

	slots, err := s.data.grid.SlotsFor(req.Slot, req.Duration)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start slot or duration")
	}
	if !s.data.grid.EndsBeforeClose(slots) {
		return nil, appErrors.ErrExceedsClosingTime
	}
	for _, slot := range slots {
		if s.data.grid.InBreak(slot) {
			return nil, appErrors.ErrOverlapsBreak
		}
	}

	var replaced map[string]struct{}
	replacedDay := ""
	if req.ReplaceID != "" {
		replacedDay, replaced = s.blockIDsLocked(req.Group, req.ReplaceID)
		if replaced == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "block to replace not found")
		}
	} else {
		// Placing where the same teacher already starts a block is an edit:
		// the old block is swapped out, not stacked next to the new one.
		for _, item := range s.data.schedule.Items(req.Group, req.Day, req.Slot) {
			if item.IsStart() && item.TeacherID == req.TeacherID {
				replacedDay, replaced = s.blockIDsLocked(req.Group, item.ID)
				break
			}
		}
	}

	for _, slot := range slots {
		occupied := 0
		for _, item := range s.data.schedule.Items(req.Group, req.Day, slot) {
			if replaced != nil && req.Day == replacedDay {
				if _, own := replaced[item.ID]; own {
					continue
				}
			}
			occupied++
		}
		if occupied >= s.data.capacity {
			return nil, appErrors.ErrSlotFull
		}
	}

	if requirement.TeacherID != req.TeacherID {
		return nil, appErrors.ErrWrongTeacher
	}

	if replaced != nil {
		s.data.schedule.RemoveIDs(req.Group, replacedDay, replaced)
	}

	start := models.NewStartItem(repository.UniqueID(), req.Subject, req.TeacherID, req.Duration, time.Now().UTC())
	s.data.schedule.Append(req.Group, req.Day, slots[0], start)

	continuations := make([]models.ScheduleItem, 0, len(slots)-1)
	for _, slot := range slots[1:] {
		cont := models.NewContinuationItem(repository.UniqueID(), start.ID, slots[0])
		s.data.schedule.Append(req.Group, req.Day, slot, cont)
		continuations = append(continuations, cont)
	}

	resp := &dto.PlaceResponse{Start: start, Continuations: continuations, Slots: slots}
	if err := s.data.persistSchedule(ctx); err != nil {
		return resp, err
	}
	s.logger.Info("block placed",
		zap.String("group", req.Group),
		zap.String("day", req.Day),
		zap.String("slot", req.Slot),
		zap.String("subject", req.Subject),
		zap.Float64("duration", req.Duration))
	return resp, nil
}

// Remove clears a whole block given any of its items. Pointing at a
// continuation removes the start item and every sibling continuation too.
// A missing item is a no-op.
func (s *TimetableService) Remove(ctx context.Context, req dto.RemoveRequest) (*dto.RemoveResponse, error) {
	if !timegrid.IsDay(req.Day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown day")
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if !s.data.schedule.HasGroup(req.Group) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}

	day, ids := s.blockIDsLocked(req.Group, req.ItemID)
	if ids == nil || day != req.Day {
		return &dto.RemoveResponse{Removed: 0}, nil
	}

	removed := s.data.schedule.RemoveIDs(req.Group, day, ids)
	if removed == 0 {
		return &dto.RemoveResponse{Removed: 0}, nil
	}

	resp := &dto.RemoveResponse{Removed: removed}
	if err := s.data.persistSchedule(ctx); err != nil {
		return resp, err
	}
	s.logger.Info("block removed",
		zap.String("group", req.Group),
		zap.String("day", day),
		zap.Int("items", removed))
	return resp, nil
}

// Timetable returns the full weekly grid of one group, every cell present in
// day and slot order.
func (s *TimetableService) Timetable(ctx context.Context, group string) (*dto.GroupTimetable, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	if !s.data.schedule.HasGroup(group) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}

	days := s.data.schedule.Days()
	slots := s.data.schedule.Slots()
	view := &dto.GroupTimetable{
		Group: group,
		Days:  days,
		Slots: slots,
		Cells: make([]dto.CellView, 0, len(days)*len(slots)),
	}
	for _, day := range days {
		for _, slot := range slots {
			view.Cells = append(view.Cells, dto.CellView{
				Day:   day,
				Slot:  slot,
				Items: s.data.schedule.Items(group, day, slot),
			})
		}
	}
	return view, nil
}

// Full returns every group's grid in the stored nested shape. The marshal
// happens under the read lock so the snapshot is consistent.
func (s *TimetableService) Full(ctx context.Context) json.RawMessage {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	raw, err := json.Marshal(s.data.schedule)
	if err != nil {
		s.logger.Error("marshal schedule", zap.Error(err))
		return json.RawMessage(`{}`)
	}
	return raw
}

// blockIDsLocked resolves any item ID of a block into the day it lives on and
// the full ID set of the block. The second return is nil when no item with
// the ID exists in the group.
func (s *TimetableService) blockIDsLocked(group, itemID string) (string, map[string]struct{}) {
	startID := ""
	day := ""
	s.data.schedule.Walk(func(g, d, slot string, items []models.ScheduleItem) {
		if g != group || startID != "" {
			return
		}
		for _, item := range items {
			if item.ID != itemID {
				continue
			}
			day = d
			if item.IsStart() {
				startID = item.ID
			} else {
				startID = item.ParentID
			}
			return
		}
	})
	if startID == "" {
		return "", nil
	}

	ids := map[string]struct{}{startID: {}}
	s.data.schedule.Walk(func(g, d, slot string, items []models.ScheduleItem) {
		if g != group || d != day {
			return
		}
		for _, item := range items {
			if item.ParentID == startID {
				ids[item.ID] = struct{}{}
			}
		}
	})
	return day, ids
}
