package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/autoasmr/api/internal/config"
	"github.com/autoasmr/api/internal/model"
)

// ErrInvalidTable is returned when a weekly table is incomplete or malformed.
var ErrInvalidTable = errors.New("invalid weekly schedule table")

// Weekdays in table order, Monday first.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Slot is the preferred publish time for one weekday.
type Slot struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
	Time    string
	Range   string
	Label   string
}

// Name returns the lowercase English weekday name used as the table key.
func (s Slot) Name() string {
	return WeekdayName(s.Weekday)
}

// CronSpec renders the slot as a weekly cron expression pinned to tz.
func (s Slot) CronSpec(tz string) string {
	return fmt.Sprintf("CRON_TZ=%s %d %d * * %d", tz, s.Minute, s.Hour, int(s.Weekday))
}

// Table maps every weekday to its slot. It is read-only after construction.
type Table struct {
	slots [7]Slot
}

// NewTable validates a weekday-keyed table. All seven weekdays must be present
// with an HH:MM time of day.
func NewTable(entries map[string]config.SlotConfig) (*Table, error) {
	t := &Table{}
	seen := 0
	for name, entry := range entries {
		wd, ok := ParseWeekday(name)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidTable, "unknown weekday %q", name)
		}
		hour, minute, err := parseClock(entry.Time)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidTable, "%s: %v", name, err)
		}
		label := entry.Label
		if label == "" {
			label = WeekdayName(wd)
		}
		t.slots[wd] = Slot{
			Weekday: wd,
			Hour:    hour,
			Minute:  minute,
			Time:    fmt.Sprintf("%02d:%02d", hour, minute),
			Range:   entry.Range,
			Label:   label,
		}
		seen |= 1 << uint(wd)
	}
	if seen != 0x7f {
		return nil, errors.Wrap(ErrInvalidTable, "all seven weekdays are required")
	}
	return t, nil
}

// DefaultTable returns the built-in one-clip-per-day table.
func DefaultTable() *Table {
	t, err := NewTable(config.DefaultWeekly())
	if err != nil {
		panic(err)
	}
	return t
}

// Slot returns the slot configured for a weekday.
func (t *Table) Slot(wd time.Weekday) Slot {
	return t.slots[wd]
}

// Slots returns all slots, Monday first.
func (t *Table) Slots() []Slot {
	out := make([]Slot, 0, len(Weekdays))
	for _, wd := range Weekdays {
		out = append(out, t.slots[wd])
	}
	return out
}

// Entries renders the table for API responses.
func (t *Table) Entries() map[string]model.ScheduleEntry {
	out := make(map[string]model.ScheduleEntry, 7)
	for _, s := range t.slots {
		out[s.Name()] = model.ScheduleEntry{Time: s.Time, Range: s.Range, Label: s.Label}
	}
	return out
}

// WeekdayName returns the lowercase English name of wd.
func WeekdayName(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}

// ParseWeekday accepts a case-insensitive English weekday name.
func ParseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if WeekdayName(wd) == name {
			return wd, true
		}
	}
	return 0, false
}

func parseClock(s string) (int, int, error) {
	tm, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, errors.Newf("time of day %q is not HH:MM", s)
	}
	return tm.Hour(), tm.Minute(), nil
}
