package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/internal/repository"
	"github.com/aulavista/horarios-api/internal/timegrid"
	appErrors "github.com/aulavista/horarios-api/pkg/errors"
)

type teacherStore interface {
	Load(ctx context.Context) ([]models.Teacher, error)
	Save(ctx context.Context, teachers []models.Teacher) error
}

type groupStore interface {
	Load(ctx context.Context, resolve repository.TeacherResolver) (map[string]models.Group, error)
	Save(ctx context.Context, groups map[string]models.Group) error
}

type scheduleStore interface {
	Load(ctx context.Context, days, slots []string, resolve repository.TeacherResolver) (*models.Schedule, bool, error)
	Save(ctx context.Context, schedule *models.Schedule) error
}

// DataService owns the whole application state: the teacher roster, the group
// registry and the weekly schedule aggregate. Every read and mutation flows
// through its lock; sibling services never touch the store directly.
//
// Persistence is write-through: mutations update memory first and then save
// the touched collection. A failed save keeps the in-memory change and is
// reported as a storage error so callers can warn without losing edits.
type DataService struct {
	mu sync.RWMutex

	grid     *timegrid.Grid
	capacity int

	teacherRepo  teacherStore
	groupRepo    groupStore
	scheduleRepo scheduleStore
	logger       *zap.Logger

	teachers []models.Teacher
	groups   map[string]models.Group
	schedule *models.Schedule
}

// NewDataService constructs the state owner. Initialize must be called before
// any other service method.
func NewDataService(grid *timegrid.Grid, capacity int, teachers teacherStore, groups groupStore, schedules scheduleStore, logger *zap.Logger) *DataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = 2
	}
	return &DataService{
		grid:         grid,
		capacity:     capacity,
		teacherRepo:  teachers,
		groupRepo:    groups,
		scheduleRepo: schedules,
		logger:       logger,
		groups:       make(map[string]models.Group),
		schedule:     models.NewSchedule(timegrid.Days, grid.Slots()),
	}
}

// Initialize loads all three collections from the store, running legacy
// upgrades and schedule migrations on the way in, and guarantees that every
// known group owns a schedule entry. Repairs are persisted best effort: a
// failed write-back is logged and startup continues on the repaired in-memory
// state.
func (d *DataService) Initialize(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	teachers, err := d.teacherRepo.Load(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load teachers")
	}
	d.teachers = teachers

	resolve := d.resolveTeacherLocked

	groups, err := d.groupRepo.Load(ctx, resolve)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load groups")
	}
	d.groups = groups

	schedule, changed, err := d.scheduleRepo.Load(ctx, timegrid.Days, d.grid.Slots(), resolve)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load schedule")
	}
	for key := range d.groups {
		if !schedule.HasGroup(key) {
			schedule.EnsureGroup(key)
			changed = true
		}
	}
	d.schedule = schedule

	if changed {
		if err := d.scheduleRepo.Save(ctx, d.schedule); err != nil {
			d.logger.Warn("could not persist repaired schedule, continuing in memory", zap.Error(err))
		}
	}

	d.logger.Info("application state loaded",
		zap.Int("teachers", len(d.teachers)),
		zap.Int("groups", len(d.groups)),
		zap.Strings("groups_with_schedule", d.schedule.Groups()))
	return nil
}

// resolveTeacherLocked maps a legacy teacher name (or an already stable ID)
// onto the teacher's ID. Unknown values pass through unchanged.
func (d *DataService) resolveTeacherLocked(nameOrID string) string {
	for _, t := range d.teachers {
		if t.ID == nameOrID {
			return t.ID
		}
	}
	for _, t := range d.teachers {
		if t.Name == nameOrID {
			return t.ID
		}
	}
	return nameOrID
}

func (d *DataService) teacherByIDLocked(id string) (models.Teacher, bool) {
	for _, t := range d.teachers {
		if t.ID == id {
			return t, true
		}
	}
	return models.Teacher{}, false
}

func (d *DataService) teacherByNameLocked(name string) (models.Teacher, bool) {
	for _, t := range d.teachers {
		if t.Name == name {
			return t, true
		}
	}
	return models.Teacher{}, false
}

// persistTeachers saves the roster, translating failures into storage errors.
// Call with the write lock held.
func (d *DataService) persistTeachers(ctx context.Context) error {
	if err := d.teacherRepo.Save(ctx, d.teachers); err != nil {
		d.logger.Error("failed to persist teachers", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}
	return nil
}

func (d *DataService) persistGroups(ctx context.Context) error {
	if err := d.groupRepo.Save(ctx, d.groups); err != nil {
		d.logger.Error("failed to persist groups", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}
	return nil
}

func (d *DataService) persistSchedule(ctx context.Context) error {
	if err := d.scheduleRepo.Save(ctx, d.schedule); err != nil {
		d.logger.Error("failed to persist schedule", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}
	return nil
}

// Grid exposes the slot layout shared by all services.
func (d *DataService) Grid() *timegrid.Grid {
	return d.grid
}
