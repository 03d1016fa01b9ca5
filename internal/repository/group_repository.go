package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/pkg/blobstore"
)

// TeacherResolver maps a legacy teacher display name to its stable ID. It
// returns the input unchanged when no teacher matches, so unknown references
// survive the upgrade instead of being dropped.
type TeacherResolver func(nameOrID string) string

// GroupRepository persists the group collection as one snapshot blob.
type GroupRepository struct {
	store  blobstore.Store
	logger *zap.Logger
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(store blobstore.Store, logger *zap.Logger) *GroupRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupRepository{store: store, logger: logger}
}

type rawSubject struct {
	TeacherID string  `json:"teacherId,omitempty"`
	Teacher   string  `json:"teacher,omitempty"`
	Hours     float64 `json:"hours"`
}

type rawGroup struct {
	TutorID  string                `json:"tutorId,omitempty"`
	Tutor    string                `json:"tutor,omitempty"`
	Order    int                   `json:"orden"`
	Subjects map[string]rawSubject `json:"subjects"`
}

// Load reads the groups, resolving legacy name references to teacher IDs via
// resolve and writing the upgraded snapshot back once anything changed.
func (r *GroupRepository) Load(ctx context.Context, resolve TeacherResolver) (map[string]models.Group, error) {
	raw, err := r.store.Get(ctx, KeyGroups)
	if err != nil {
		if errors.Is(err, blobstore.ErrKeyNotFound) {
			return map[string]models.Group{}, nil
		}
		return nil, fmt.Errorf("load groups: %w", err)
	}

	var decoded map[string]rawGroup
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}

	groups := make(map[string]models.Group, len(decoded))
	upgraded := false
	for key, rg := range decoded {
		group := models.Group{
			Key:      key,
			TutorID:  rg.TutorID,
			Order:    rg.Order,
			Subjects: make(map[string]models.SubjectRequirement, len(rg.Subjects)),
		}
		if group.TutorID == "" && rg.Tutor != "" {
			group.TutorID = resolve(rg.Tutor)
			upgraded = true
		}
		for subject, rs := range rg.Subjects {
			req := models.SubjectRequirement{TeacherID: rs.TeacherID, WeeklyHours: rs.Hours}
			if req.TeacherID == "" && rs.Teacher != "" {
				req.TeacherID = resolve(rs.Teacher)
				upgraded = true
			}
			group.Subjects[subject] = req
		}
		groups[key] = group
	}

	if upgraded {
		r.logger.Info("upgraded legacy group references", zap.Int("count", len(groups)))
		if err := r.Save(ctx, groups); err != nil {
			return nil, err
		}
	}

	return groups, nil
}

// Save replaces the whole group snapshot.
func (r *GroupRepository) Save(ctx context.Context, groups map[string]models.Group) error {
	encoded := make(map[string]rawGroup, len(groups))
	for key, group := range groups {
		rg := rawGroup{
			TutorID:  group.TutorID,
			Order:    group.Order,
			Subjects: make(map[string]rawSubject, len(group.Subjects)),
		}
		for subject, req := range group.Subjects {
			rg.Subjects[subject] = rawSubject{TeacherID: req.TeacherID, Hours: req.WeeklyHours}
		}
		encoded[key] = rg
	}

	data, err := json.Marshal(encoded)
	if err != nil {
		return fmt.Errorf("encode groups: %w", err)
	}
	if err := r.store.Put(ctx, KeyGroups, data); err != nil {
		return fmt.Errorf("save groups: %w", err)
	}
	return nil
}
