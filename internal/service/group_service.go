package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/models"
	appErrors "github.com/aulavista/horarios-api/pkg/errors"
)

// GroupService manages class groups and their subject requirements. A group's
// display name is also its storage key, so renames move the schedule entry
// along with the group.
type GroupService struct {
	data   *DataService
	logger *zap.Logger
}

// NewGroupService constructs a GroupService.
func NewGroupService(data *DataService, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{data: data, logger: logger}
}

// List returns all groups ordered by their configured position, name as tie
// breaker.
func (s *GroupService) List(ctx context.Context) []models.Group {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	out := make([]models.Group, 0, len(s.data.groups))
	for _, g := range s.data.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Get returns a group by its name key.
func (s *GroupService) Get(ctx context.Context, key string) (models.Group, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	group, ok := s.data.groups[key]
	if !ok {
		return models.Group{}, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	return group, nil
}

// Create registers a new group and opens its empty schedule entry.
func (s *GroupService) Create(ctx context.Context, name, tutorID string, order int) (models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Group{}, appErrors.Clone(appErrors.ErrValidation, "group name is required")
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, exists := s.data.groups[name]; exists {
		return models.Group{}, appErrors.ErrDuplicateName
	}
	if tutorID != "" {
		if _, ok := s.data.teacherByIDLocked(tutorID); !ok {
			return models.Group{}, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
	}

	group := models.Group{
		Key:      name,
		TutorID:  tutorID,
		Order:    order,
		Subjects: make(map[string]models.SubjectRequirement),
	}
	s.data.groups[name] = group
	s.data.schedule.EnsureGroup(name)

	if err := s.data.persistGroups(ctx); err != nil {
		return group, err
	}
	if err := s.data.persistSchedule(ctx); err != nil {
		return group, err
	}
	s.logger.Info("group created", zap.String("group", name))
	return group, nil
}

// Rename changes the group name and moves its schedule entry to the new key.
func (s *GroupService) Rename(ctx context.Context, key, newName string) (models.Group, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return models.Group{}, appErrors.Clone(appErrors.ErrValidation, "group name is required")
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	group, ok := s.data.groups[key]
	if !ok {
		return models.Group{}, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	if newName == key {
		return group, nil
	}
	if _, exists := s.data.groups[newName]; exists {
		return models.Group{}, appErrors.ErrDuplicateName
	}

	delete(s.data.groups, key)
	group.Key = newName
	s.data.groups[newName] = group
	s.data.schedule.RenameGroup(key, newName)

	if err := s.data.persistGroups(ctx); err != nil {
		return group, err
	}
	if err := s.data.persistSchedule(ctx); err != nil {
		return group, err
	}
	s.logger.Info("group renamed", zap.String("from", key), zap.String("to", newName))
	return group, nil
}

// Update changes tutor and ordering. Nil fields stay untouched.
func (s *GroupService) Update(ctx context.Context, key string, tutorID *string, order *int) (models.Group, error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	group, ok := s.data.groups[key]
	if !ok {
		return models.Group{}, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	if tutorID != nil {
		if *tutorID != "" {
			if _, ok := s.data.teacherByIDLocked(*tutorID); !ok {
				return models.Group{}, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
			}
		}
		group.TutorID = *tutorID
	}
	if order != nil {
		group.Order = *order
	}
	s.data.groups[key] = group

	if err := s.data.persistGroups(ctx); err != nil {
		return group, err
	}
	return group, nil
}

// Delete removes the group and its schedule entry.
func (s *GroupService) Delete(ctx context.Context, key string) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, ok := s.data.groups[key]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	delete(s.data.groups, key)
	s.data.schedule.DeleteGroup(key)

	if err := s.data.persistGroups(ctx); err != nil {
		return err
	}
	if err := s.data.persistSchedule(ctx); err != nil {
		return err
	}
	s.logger.Info("group deleted", zap.String("group", key))
	return nil
}

// SetSubjectRequirement assigns a subject to the group with its weekly hours
// and responsible teacher. An existing requirement for the subject is
// replaced.
func (s *GroupService) SetSubjectRequirement(ctx context.Context, key, subject, teacherID string, hours float64) (models.Group, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return models.Group{}, appErrors.Clone(appErrors.ErrValidation, "subject name is required")
	}
	if hours <= 0 {
		return models.Group{}, appErrors.Clone(appErrors.ErrValidation, "weekly hours must be positive")
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	group, ok := s.data.groups[key]
	if !ok {
		return models.Group{}, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	if _, ok := s.data.teacherByIDLocked(teacherID); !ok {
		return models.Group{}, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	if group.Subjects == nil {
		group.Subjects = make(map[string]models.SubjectRequirement)
	}
	group.Subjects[subject] = models.SubjectRequirement{TeacherID: teacherID, WeeklyHours: hours}
	s.data.groups[key] = group

	if err := s.data.persistGroups(ctx); err != nil {
		return group, err
	}
	return group, nil
}

// RemoveSubjectRequirement drops a subject from the group. Already placed
// blocks of the subject stay on the grid.
func (s *GroupService) RemoveSubjectRequirement(ctx context.Context, key, subject string) (models.Group, error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	group, ok := s.data.groups[key]
	if !ok {
		return models.Group{}, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	if _, ok := group.Subjects[subject]; !ok {
		return models.Group{}, appErrors.Clone(appErrors.ErrNotFound, "subject not assigned to this group")
	}
	delete(group.Subjects, subject)
	s.data.groups[key] = group

	if err := s.data.persistGroups(ctx); err != nil {
		return group, err
	}
	return group, nil
}
