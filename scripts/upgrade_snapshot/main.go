// Command upgrade_snapshot converts a legacy browser export (a dump of the
// editor's localStorage collections) into the current snapshot format. It
// runs the same repair and migration path the server applies at startup, so
// the output is exactly what the API would persist.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/repository"
	"github.com/aulavista/horarios-api/internal/timegrid"
	"github.com/aulavista/horarios-api/pkg/blobstore"
	"github.com/aulavista/horarios-api/pkg/config"
)

type legacyDump struct {
	Teachers  json.RawMessage `json:"teachers"`
	Groups    json.RawMessage `json:"groups"`
	Schedules json.RawMessage `json:"schedules"`
}

type upgraded struct {
	Groups    interface{} `json:"groups"`
	Teachers  interface{} `json:"teachers"`
	Schedules interface{} `json:"schedules"`
	Timestamp time.Time   `json:"timestamp"`
	Version   string      `json:"version"`
}

func main() {
	var (
		inPath  string
		outPath string
	)
	flag.StringVar(&inPath, "in", "", "Path to the legacy export JSON")
	flag.StringVar(&outPath, "out", "", "Output path (default: stdout)")
	flag.Parse()

	if inPath == "" {
		log.Fatal("usage: upgrade_snapshot -in legacy.json [-out upgraded.json]")
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		log.Fatalf("failed to read input: %v", err)
	}
	var dump legacyDump
	if err := json.Unmarshal(data, &dump); err != nil {
		log.Fatalf("input is not a legacy export: %v", err)
	}

	doc, err := upgrade(dump)
	if err != nil {
		log.Fatalf("upgrade failed: %v", err)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode output: %v", err)
	}
	out = append(out, '\n')

	if outPath == "" {
		fmt.Print(string(out))
		return
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		log.Fatalf("failed to write output: %v", err)
	}
	fmt.Printf("wrote %s\n", outPath)
}

// upgrade feeds the dump through the load path and re-reads the repaired
// collections from the store.
func upgrade(dump legacyDump) (*upgraded, error) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	logger := zap.NewNop()

	put := func(key string, raw json.RawMessage) error {
		if len(raw) == 0 || string(raw) == "null" {
			return nil
		}
		return store.Put(ctx, key, raw)
	}
	if err := put(repository.KeyTeachers, dump.Teachers); err != nil {
		return nil, err
	}
	if err := put(repository.KeyGroups, dump.Groups); err != nil {
		return nil, err
	}
	if err := put(repository.KeySchedules, dump.Schedules); err != nil {
		return nil, err
	}

	grid, err := timegrid.New(config.SchoolConfig{
		DayStart:     "09:00",
		DayEnd:       "14:00",
		SlotInterval: 15 * time.Minute,
		BreakStart:   "12:00",
		BreakEnd:     "12:30",
		SlotCapacity: 2,
	})
	if err != nil {
		return nil, err
	}

	teacherRepo := repository.NewTeacherRepository(store, logger)
	teachers, err := teacherRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load teachers: %w", err)
	}

	resolve := func(nameOrID string) string {
		for _, t := range teachers {
			if t.ID == nameOrID || t.Name == nameOrID {
				return t.ID
			}
		}
		return nameOrID
	}

	groupRepo := repository.NewGroupRepository(store, logger)
	groups, err := groupRepo.Load(ctx, resolve)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}

	scheduleRepo := repository.NewScheduleRepository(store, logger)
	schedule, _, err := scheduleRepo.Load(ctx, timegrid.Days, grid.Slots(), resolve)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	for key := range groups {
		schedule.EnsureGroup(key)
	}

	return &upgraded{
		Groups:    groups,
		Teachers:  teachers,
		Schedules: schedule,
		Timestamp: time.Now().UTC(),
		Version:   "3.0",
	}, nil
}
