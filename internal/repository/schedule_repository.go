package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/pkg/blobstore"
)

// RawSchedule is the decoded persisted shape of the schedule blob before the
// integrity gate has run: group → day → slot → unknown value. Historical blobs
// stored bare objects or null where a list belongs, which is exactly what the
// repair and migration passes normalise.
type RawSchedule map[string]map[string]map[string]interface{}

// ScheduleRepository persists the schedule aggregate as one snapshot blob and
// owns the load-time repair/migration passes.
type ScheduleRepository struct {
	store  blobstore.Store
	logger *zap.Logger
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(store blobstore.Store, logger *zap.Logger) *ScheduleRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleRepository{store: store, logger: logger}
}

// Load reads, repairs and migrates the stored schedule, then materialises it
// over the given day/slot grids. The returned flag tells the caller whether
// anything was normalised and the snapshot should be re-persisted.
func (r *ScheduleRepository) Load(ctx context.Context, days, slots []string, resolve TeacherResolver) (*models.Schedule, bool, error) {
	schedule := models.NewSchedule(days, slots)

	blob, err := r.store.Get(ctx, KeySchedules)
	if err != nil {
		if errors.Is(err, blobstore.ErrKeyNotFound) {
			return schedule, false, nil
		}
		return nil, false, fmt.Errorf("load schedules: %w", err)
	}

	var raw RawSchedule
	if err := json.Unmarshal(blob, &raw); err != nil {
		return nil, false, fmt.Errorf("decode schedules: %w", err)
	}

	changed := false
	if repaired := RepairSlotShapes(raw); repaired > 0 {
		r.logger.Warn("repaired malformed schedule slots", zap.Int("count", repaired))
		changed = true
	}
	if NeedsMigration(raw) {
		r.logger.Info("migrating legacy schedule data")
		raw = Migrate(raw)
		changed = true
	}

	for group, byDay := range raw {
		schedule.EnsureGroup(group)
		for day, bySlot := range byDay {
			for slot, value := range bySlot {
				items, err := decodeSlotItems(value)
				if err != nil {
					return nil, false, fmt.Errorf("decode slot %s/%s/%s: %w", group, day, slot, err)
				}
				for _, item := range items {
					if item.IsStart() {
						if resolved := resolve(item.TeacherID); resolved != item.TeacherID {
							item.TeacherID = resolved
							changed = true
						}
					}
					schedule.Append(group, day, slot, item)
				}
			}
		}
	}

	return schedule, changed, nil
}

// Save replaces the whole schedule snapshot. The aggregate marshals into the
// nested persisted shape with every cell present, empty ones as empty lists.
func (r *ScheduleRepository) Save(ctx context.Context, schedule *models.Schedule) error {
	data, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("encode schedules: %w", err)
	}
	if err := r.store.Put(ctx, KeySchedules, data); err != nil {
		return fmt.Errorf("save schedules: %w", err)
	}
	return nil
}

// RepairSlotShapes walks every slot and forces it into list shape: a single
// plain object becomes a one-element list, anything else that is not a list is
// reset to an empty one. It returns how many slots were rewritten. This is the
// data-integrity gate and must run before any other operation on loaded data.
func RepairSlotShapes(raw RawSchedule) int {
	repaired := 0
	for _, byDay := range raw {
		for _, bySlot := range byDay {
			for slot, value := range bySlot {
				if _, ok := value.([]interface{}); ok {
					continue
				}
				if obj, ok := value.(map[string]interface{}); ok && obj != nil {
					bySlot[slot] = []interface{}{obj}
				} else {
					bySlot[slot] = []interface{}{}
				}
				repaired++
			}
		}
	}
	return repaired
}

// NeedsMigration reports whether any slot is not a list or any contained item
// lacks a unique id.
func NeedsMigration(raw RawSchedule) bool {
	for _, byDay := range raw {
		for _, bySlot := range byDay {
			for _, value := range bySlot {
				items, ok := value.([]interface{})
				if !ok {
					return true
				}
				for _, entry := range items {
					item, ok := entry.(map[string]interface{})
					if !ok {
						return true
					}
					if id, _ := item["id"].(string); id == "" {
						return true
					}
				}
			}
		}
	}
	return false
}

// Migrate upgrades legacy schedule data in two passes. Pass one wraps bare
// slot values into lists and assigns a fresh id to every item missing one.
// Pass two indexes each day's start items by slot and attaches parentId to any
// continuation that only carries its startTime. Running Migrate on already
// migrated data returns an equal structure.
func Migrate(raw RawSchedule) RawSchedule {
	out := make(RawSchedule, len(raw))

	for group, byDay := range raw {
		out[group] = make(map[string]map[string]interface{}, len(byDay))
		for day, bySlot := range byDay {
			out[group][day] = make(map[string]interface{}, len(bySlot))
			for slot, value := range bySlot {
				out[group][day][slot] = migrateSlotValue(value)
			}
		}
	}

	for _, byDay := range out {
		for _, bySlot := range byDay {
			startIndex := make(map[string]string)
			for slot, value := range bySlot {
				for _, entry := range value.([]interface{}) {
					item := entry.(map[string]interface{})
					if isStart, _ := item["isStart"].(bool); isStart {
						startIndex[slot] = item["id"].(string)
					}
				}
			}
			for _, value := range bySlot {
				for _, entry := range value.([]interface{}) {
					item := entry.(map[string]interface{})
					isCont, _ := item["isContinuation"].(bool)
					parentID, _ := item["parentId"].(string)
					startTime, _ := item["startTime"].(string)
					if isCont && parentID == "" && startTime != "" {
						if startID, ok := startIndex[startTime]; ok {
							item["parentId"] = startID
						}
					}
				}
			}
		}
	}

	return out
}

func migrateSlotValue(value interface{}) []interface{} {
	switch v := value.(type) {
	case []interface{}:
		items := make([]interface{}, 0, len(v))
		for _, entry := range v {
			item, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			items = append(items, withID(item))
		}
		return items
	case map[string]interface{}:
		// A bare object only counts as content when it actually describes a
		// class; stray empty objects reset to an empty list.
		if v["subject"] != nil || v["isContinuation"] != nil {
			return []interface{}{withID(v)}
		}
		return []interface{}{}
	default:
		return []interface{}{}
	}
}

func withID(item map[string]interface{}) map[string]interface{} {
	cp := make(map[string]interface{}, len(item)+1)
	for k, v := range item {
		cp[k] = v
	}
	if id, _ := cp["id"].(string); id == "" {
		cp["id"] = UniqueID()
	}
	return cp
}

// UniqueID returns an identifier unique for the lifetime of the data set.
func UniqueID() string {
	return uuid.NewString()
}

func decodeSlotItems(value interface{}) ([]models.ScheduleItem, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var items []models.ScheduleItem
	if err := json.Unmarshal(encoded, &items); err != nil {
		return nil, err
	}
	return items, nil
}
