package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/internal/timegrid"
)

type conflictGauge interface {
	SetConflictCount(n int)
}

// ConflictService detects teacher double bookings: the same teacher standing
// in two or more groups during the same day and slot. Continuation markers
// count like their start item, so long blocks collide over their whole span.
type ConflictService struct {
	data    *DataService
	metrics conflictGauge
	logger  *zap.Logger
}

// NewConflictService constructs a ConflictService. metrics may be nil.
func NewConflictService(data *DataService, metrics conflictGauge, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{data: data, metrics: metrics, logger: logger}
}

type occupancyKey struct {
	teacherID string
	day       string
	slot      string
}

// Detect scans the whole schedule and returns every double booking in
// deterministic order: teacher name, then day, then slot.
func (s *ConflictService) Detect(ctx context.Context) []models.Conflict {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	// Continuations only carry a parent reference. Index the start items
	// first so every marker can be attributed to its teacher and subject.
	starts := make(map[string]models.ScheduleItem)
	s.data.schedule.Walk(func(group, day, slot string, items []models.ScheduleItem) {
		for _, item := range items {
			if item.IsStart() {
				starts[item.ID] = item
			}
		}
	})

	occupancy := make(map[occupancyKey][]models.ConflictOccurrence)
	s.data.schedule.Walk(func(group, day, slot string, items []models.ScheduleItem) {
		for _, item := range items {
			teacherID := item.TeacherID
			subject := item.Subject
			if !item.IsStart() {
				parent, ok := starts[item.ParentID]
				if !ok {
					continue
				}
				teacherID = parent.TeacherID
				subject = parent.Subject
			}
			if teacherID == "" {
				continue
			}
			key := occupancyKey{teacherID: teacherID, day: day, slot: slot}
			occupancy[key] = append(occupancy[key], models.ConflictOccurrence{Group: group, Subject: subject})
		}
	})

	dayIndex := make(map[string]int, len(timegrid.Days))
	for i, d := range timegrid.Days {
		dayIndex[d] = i
	}

	var conflicts []models.Conflict
	for key, occurrences := range occupancy {
		if len(occurrences) < 2 {
			continue
		}
		name := key.teacherID
		if teacher, ok := s.data.teacherByIDLocked(key.teacherID); ok {
			name = teacher.Name
		}
		sort.Slice(occurrences, func(i, j int) bool {
			if occurrences[i].Group != occurrences[j].Group {
				return occurrences[i].Group < occurrences[j].Group
			}
			return occurrences[i].Subject < occurrences[j].Subject
		})
		conflicts = append(conflicts, models.Conflict{
			TeacherID:   key.teacherID,
			TeacherName: name,
			Day:         key.day,
			Slot:        key.slot,
			Occurrences: occurrences,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].TeacherName != conflicts[j].TeacherName {
			return conflicts[i].TeacherName < conflicts[j].TeacherName
		}
		if dayIndex[conflicts[i].Day] != dayIndex[conflicts[j].Day] {
			return dayIndex[conflicts[i].Day] < dayIndex[conflicts[j].Day]
		}
		return conflicts[i].Slot < conflicts[j].Slot
	})

	if s.metrics != nil {
		s.metrics.SetConflictCount(len(conflicts))
	}
	if len(conflicts) > 0 {
		s.logger.Debug("double bookings detected", zap.Int("count", len(conflicts)))
	}
	return conflicts
}
