package schedule

import (
	"time"
	_ "time/tzdata"

	"github.com/cockroachdb/errors"

	"github.com/autoasmr/api/internal/model"
)

// Policy resolves "now" in one fixed civil time zone and finds the next
// publish slot from the weekly table. No other zone is ever mixed in.
type Policy struct {
	loc   *time.Location
	table *Table
	now   func() time.Time
}

// NewPolicy loads the IANA zone tz and binds it to table.
func NewPolicy(tz string, table *Table) (*Policy, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load time zone %q", tz)
	}
	return NewPolicyInLocation(loc, table), nil
}

// NewPolicyInLocation binds an already resolved location to table.
func NewPolicyInLocation(loc *time.Location, table *Table) *Policy {
	return &Policy{loc: loc, table: table, now: time.Now}
}

// WithClock returns a copy of the policy that reads the time from now.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	c := *p
	c.now = now
	return &c
}

// Location returns the policy's civil time zone.
func (p *Policy) Location() *time.Location {
	return p.loc
}

// Table returns the weekly table.
func (p *Policy) Table() *Table {
	return p.table
}

// Now returns the current instant in the policy's zone.
func (p *Policy) Now() time.Time {
	return p.now().In(p.loc)
}

// NextOptimalSlot returns the next slot strictly after the current time.
func (p *Policy) NextOptimalSlot() model.NextSlot {
	return p.NextSlotAfter(p.Now())
}

// NextSlotAfter scans today and the following six days. Today's slot only
// qualifies while it is still in the future; any later day qualifies outright.
func (p *Policy) NextSlotAfter(now time.Time) model.NextSlot {
	now = now.In(p.loc)
	for daysAhead := 0; daysAhead < 7; daysAhead++ {
		date := now.AddDate(0, 0, daysAhead)
		slot := p.table.Slot(date.Weekday())
		at := p.slotOn(date, slot)
		if at.After(now) || daysAhead > 0 {
			return p.toNextSlot(at, slot)
		}
	}
	return p.nextMondayFallback(now)
}

// nextMondayFallback is unreachable with correct weekday arithmetic; the
// scan above always returns by daysAhead == 1.
func (p *Policy) nextMondayFallback(now time.Time) model.NextSlot {
	now = now.In(p.loc)
	daysUntil := 7 - (int(now.Weekday())+6)%7
	date := now.AddDate(0, 0, daysUntil)
	slot := p.table.Slot(time.Monday)
	return p.toNextSlot(p.slotOn(date, slot), slot)
}

func (p *Policy) slotOn(date time.Time, slot Slot) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), slot.Hour, slot.Minute, 0, 0, p.loc)
}

func (p *Policy) toNextSlot(at time.Time, slot Slot) model.NextSlot {
	return model.NextSlot{
		At:           at,
		Weekday:      slot.Name(),
		WeekdayLabel: slot.Label,
		TimeRange:    slot.Range,
	}
}
