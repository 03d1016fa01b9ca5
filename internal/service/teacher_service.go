package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/internal/repository"
	appErrors "github.com/aulavista/horarios-api/pkg/errors"
)

// TeacherService manages the teacher roster. Teachers carry a stable ID that
// groups and schedule items reference, so renames never cascade.
type TeacherService struct {
	data   *DataService
	logger *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(data *DataService, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{data: data, logger: logger}
}

// List returns the roster sorted by name.
func (s *TeacherService) List(ctx context.Context) []models.Teacher {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	out := make([]models.Teacher, len(s.data.teachers))
	copy(out, s.data.teachers)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns a teacher by ID.
func (s *TeacherService) Get(ctx context.Context, id string) (models.Teacher, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	teacher, ok := s.data.teacherByIDLocked(id)
	if !ok {
		return models.Teacher{}, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	return teacher, nil
}

// Add registers a new teacher. Names are unique across the roster.
func (s *TeacherService) Add(ctx context.Context, name string) (models.Teacher, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Teacher{}, appErrors.Clone(appErrors.ErrValidation, "teacher name is required")
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, exists := s.data.teacherByNameLocked(name); exists {
		return models.Teacher{}, appErrors.ErrDuplicateName
	}

	teacher := models.Teacher{
		ID:   uuid.NewString(),
		Code: repository.DeriveTeacherCode(name),
		Name: name,
	}
	s.data.teachers = append(s.data.teachers, teacher)

	if err := s.data.persistTeachers(ctx); err != nil {
		return teacher, err
	}
	s.logger.Info("teacher added", zap.String("id", teacher.ID), zap.String("name", teacher.Name))
	return teacher, nil
}

// Rename changes a teacher's display name. Subject assignments and schedule
// items keep working because they reference the ID.
func (s *TeacherService) Rename(ctx context.Context, id, name string) (models.Teacher, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Teacher{}, appErrors.Clone(appErrors.ErrValidation, "teacher name is required")
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if existing, ok := s.data.teacherByNameLocked(name); ok && existing.ID != id {
		return models.Teacher{}, appErrors.ErrDuplicateName
	}

	for i := range s.data.teachers {
		if s.data.teachers[i].ID != id {
			continue
		}
		s.data.teachers[i].Name = name
		s.data.teachers[i].Code = repository.DeriveTeacherCode(name)
		updated := s.data.teachers[i]
		if err := s.data.persistTeachers(ctx); err != nil {
			return updated, err
		}
		s.logger.Info("teacher renamed", zap.String("id", id), zap.String("name", name))
		return updated, nil
	}
	return models.Teacher{}, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
}

// Delete removes a teacher. Removal is rejected while any group references
// the teacher as tutor or in a subject requirement.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	idx := -1
	for i := range s.data.teachers {
		if s.data.teachers[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	for _, group := range s.data.groups {
		if group.ReferencesTeacher(id) {
			return appErrors.ErrTeacherInUse
		}
	}

	s.data.teachers = append(s.data.teachers[:idx], s.data.teachers[idx+1:]...)
	if err := s.data.persistTeachers(ctx); err != nil {
		return err
	}
	s.logger.Info("teacher deleted", zap.String("id", id))
	return nil
}
