package timegrid

import (
	"fmt"
	"time"

	"github.com/aulavista/horarios-api/pkg/config"
)

// Days lists the teaching days in fixed order. The literal names double as
// keys inside persisted schedule blobs, so they are never localised.
var Days = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes"}

// IsDay reports whether name is one of the fixed teaching days.
func IsDay(name string) bool {
	for _, d := range Days {
		if d == name {
			return true
		}
	}
	return false
}

// Generate returns the ordered slot labels in the half-open range [start, end)
// stepping by interval. It is pure and deterministic.
func Generate(start, end string, interval time.Duration) []string {
	startMin, err := parseClock(start)
	if err != nil {
		return nil
	}
	endMin, err := parseClock(end)
	if err != nil {
		return nil
	}
	step := int(interval.Minutes())
	if step <= 0 {
		return nil
	}

	var slots []string
	for m := startMin; m < endMin; m += step {
		slots = append(slots, formatClock(m))
	}
	return slots
}

// Grid is the fixed slot layout of one school day.
type Grid struct {
	dayEnd     string
	breakStart string
	breakEnd   string
	interval   time.Duration
	slots      []string
	index      map[string]int
}

// New builds a grid from the school configuration.
func New(cfg config.SchoolConfig) (*Grid, error) {
	slots := Generate(cfg.DayStart, cfg.DayEnd, cfg.SlotInterval)
	if len(slots) == 0 {
		return nil, fmt.Errorf("invalid school day bounds %q-%q", cfg.DayStart, cfg.DayEnd)
	}
	index := make(map[string]int, len(slots))
	for i, slot := range slots {
		index[slot] = i
	}
	return &Grid{
		dayEnd:     cfg.DayEnd,
		breakStart: cfg.BreakStart,
		breakEnd:   cfg.BreakEnd,
		interval:   cfg.SlotInterval,
		slots:      slots,
		index:      index,
	}, nil
}

// Slots returns the ordered slot labels of the day.
func (g *Grid) Slots() []string {
	out := make([]string, len(g.slots))
	copy(out, g.slots)
	return out
}

// Contains reports whether slot is part of the grid.
func (g *Grid) Contains(slot string) bool {
	_, ok := g.index[slot]
	return ok
}

// SlotsFor expands a block starting at start with the given duration in hours
// into the list of slots it occupies. Durations must be positive multiples of
// the slot interval.
func (g *Grid) SlotsFor(start string, durationHours float64) ([]string, error) {
	if _, ok := g.index[start]; !ok {
		return nil, fmt.Errorf("unknown start slot %q", start)
	}
	stepMin := int(g.interval.Minutes())
	totalMin := durationHours * 60
	if totalMin <= 0 || totalMin != float64(int(totalMin)) || int(totalMin)%stepMin != 0 {
		return nil, fmt.Errorf("duration %.2fh is not a positive multiple of %dm", durationHours, stepMin)
	}

	count := int(totalMin) / stepMin
	startMin, _ := parseClock(start)
	slots := make([]string, count)
	for i := 0; i < count; i++ {
		slots[i] = formatClock(startMin + i*stepMin)
	}
	return slots, nil
}

// EndsBeforeClose reports whether the last occupied slot still lies strictly
// before the closing time.
func (g *Grid) EndsBeforeClose(slots []string) bool {
	if len(slots) == 0 {
		return false
	}
	last, err := parseClock(slots[len(slots)-1])
	if err != nil {
		return false
	}
	end, err := parseClock(g.dayEnd)
	if err != nil {
		return false
	}
	return last < end
}

// InBreak reports whether slot falls inside the break window [start, end).
func (g *Grid) InBreak(slot string) bool {
	if g.breakStart == "" || g.breakEnd == "" {
		return false
	}
	return slot >= g.breakStart && slot < g.breakEnd
}

// SlotCount returns how many slots a block of durationHours occupies.
func (g *Grid) SlotCount(durationHours float64) int {
	stepMin := int(g.interval.Minutes())
	return int(durationHours*60) / stepMin
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
