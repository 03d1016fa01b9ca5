package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/pkg/blobstore"
)

// TeacherRepository persists the teacher roster as one snapshot blob.
type TeacherRepository struct {
	store  blobstore.Store
	logger *zap.Logger
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(store blobstore.Store, logger *zap.Logger) *TeacherRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherRepository{store: store, logger: logger}
}

// Load reads the roster, transparently upgrading legacy entries. Two legacy
// shapes exist: bare name strings, and records whose "id" holds the short
// display code instead of a stable identifier. Both are rewritten once and the
// upgraded roster is persisted immediately, so a second Load is a plain read.
func (r *TeacherRepository) Load(ctx context.Context) ([]models.Teacher, error) {
	raw, err := r.store.Get(ctx, KeyTeachers)
	if err != nil {
		if errors.Is(err, blobstore.ErrKeyNotFound) {
			return []models.Teacher{}, nil
		}
		return nil, fmt.Errorf("load teachers: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode teachers: %w", err)
	}

	teachers := make([]models.Teacher, 0, len(entries))
	upgraded := false
	for _, entry := range entries {
		teacher, changed, err := decodeTeacherEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("decode teacher entry: %w", err)
		}
		upgraded = upgraded || changed
		teachers = append(teachers, teacher)
	}

	if upgraded {
		r.logger.Info("upgraded legacy teacher entries", zap.Int("count", len(teachers)))
		if err := r.Save(ctx, teachers); err != nil {
			return nil, err
		}
	}

	return teachers, nil
}

// Save replaces the whole roster snapshot.
func (r *TeacherRepository) Save(ctx context.Context, teachers []models.Teacher) error {
	data, err := json.Marshal(teachers)
	if err != nil {
		return fmt.Errorf("encode teachers: %w", err)
	}
	if err := r.store.Put(ctx, KeyTeachers, data); err != nil {
		return fmt.Errorf("save teachers: %w", err)
	}
	return nil
}

func decodeTeacherEntry(entry json.RawMessage) (models.Teacher, bool, error) {
	var name string
	if err := json.Unmarshal(entry, &name); err == nil {
		return models.Teacher{
			ID:   uuid.NewString(),
			Code: DeriveTeacherCode(name),
			Name: name,
		}, true, nil
	}

	var teacher models.Teacher
	if err := json.Unmarshal(entry, &teacher); err != nil {
		return models.Teacher{}, false, err
	}

	changed := false
	if teacher.ID != "" && teacher.Code == "" && !isUUID(teacher.ID) {
		// Pre-redesign records used "id" for the short display code.
		teacher.Code = teacher.ID
		teacher.ID = ""
		changed = true
	}
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
		changed = true
	}
	return teacher, changed, nil
}

// DeriveTeacherCode builds the default short code shown on grids.
func DeriveTeacherCode(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) > 5 {
		runes = runes[:5]
	}
	return strings.ToUpper(string(runes))
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
