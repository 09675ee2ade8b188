package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoasmr/api/internal/config"
)

func bangkokPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy("Asia/Bangkok", DefaultTable())
	require.NoError(t, err)
	return p
}

func TestNewPolicy_UnknownZone(t *testing.T) {
	_, err := NewPolicy("Mars/Olympus_Mons", DefaultTable())
	require.Error(t, err)
}

func TestNow_UsesPolicyZone(t *testing.T) {
	p := bangkokPolicy(t)
	fixed := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	now := p.WithClock(func() time.Time { return fixed }).Now()

	assert.Equal(t, "Asia/Bangkok", now.Location().String())
	assert.Equal(t, 7, now.Hour())
	assert.True(t, now.Equal(fixed))
}

func TestNextSlotAfter_TodayStillAhead(t *testing.T) {
	p := bangkokPolicy(t)
	// Thursday 2026-10-15 10:00 Bangkok, Thursday slot 17:30
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, p.Location())

	slot := p.NextSlotAfter(now)
	assert.Equal(t, time.Date(2026, 10, 15, 17, 30, 0, 0, p.Location()), slot.At)
	assert.Equal(t, "thursday", slot.Weekday)
	assert.Equal(t, "17:00-18:00", slot.TimeRange)
	assert.Equal(t, "วันพฤหัสบดี", slot.WeekdayLabel)
}

func TestNextSlotAfter_TodayPassedRollsToTomorrow(t *testing.T) {
	p := bangkokPolicy(t)
	now := time.Date(2026, 10, 15, 18, 0, 0, 0, p.Location())

	slot := p.NextSlotAfter(now)
	assert.Equal(t, time.Date(2026, 10, 16, 16, 30, 0, 0, p.Location()), slot.At)
	assert.Equal(t, "friday", slot.Weekday)
}

func TestNextSlotAfter_ExactlyAtSlotIsNotFuture(t *testing.T) {
	p := bangkokPolicy(t)
	now := time.Date(2026, 10, 15, 17, 30, 0, 0, p.Location())

	slot := p.NextSlotAfter(now)
	assert.Equal(t, "friday", slot.Weekday)
}

func TestNextSlotAfter_SundayNightRollsToMonday(t *testing.T) {
	p := bangkokPolicy(t)
	now := time.Date(2026, 10, 18, 23, 0, 0, 0, p.Location())

	slot := p.NextSlotAfter(now)
	assert.Equal(t, time.Date(2026, 10, 19, 19, 30, 0, 0, p.Location()), slot.At)
	assert.Equal(t, "monday", slot.Weekday)
}

func TestNextSlotAfter_ConvertsForeignZone(t *testing.T) {
	p := bangkokPolicy(t)
	// 2026-10-15 09:00 UTC is 16:00 Bangkok, Thursday slot 17:30 is still ahead
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	slot := p.NextSlotAfter(now)
	assert.Equal(t, time.Date(2026, 10, 15, 17, 30, 0, 0, p.Location()), slot.At)
}

func TestNextSlotAfter_MatchesTableForEveryHourOfTheWeek(t *testing.T) {
	p := bangkokPolicy(t)
	start := time.Date(2026, 10, 12, 0, 0, 0, 0, p.Location()) // Monday

	for h := 0; h < 7*24; h++ {
		for _, minute := range []int{0, 29, 30, 31} {
			now := start.Add(time.Duration(h)*time.Hour + time.Duration(minute)*time.Minute)
			slot := p.NextSlotAfter(now)

			configured := p.Table().Slot(slot.At.Weekday())
			assert.Equal(t, configured.Hour, slot.At.Hour(), "now=%s", now)
			assert.Equal(t, configured.Minute, slot.At.Minute(), "now=%s", now)
			assert.Equal(t, configured.Name(), slot.Weekday)
			assert.True(t, slot.At.After(now), "slot %s not after %s", slot.At, now)
			assert.LessOrEqual(t, slot.At.Sub(now), 48*time.Hour)
		}
	}
}

// The fallback is a defensive branch only; exercise it directly.
func TestNextMondayFallback(t *testing.T) {
	p := bangkokPolicy(t)

	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2026, 10, 12, 8, 0, 0, 0, p.Location()), time.Date(2026, 10, 19, 19, 30, 0, 0, p.Location())},
		{time.Date(2026, 10, 15, 8, 0, 0, 0, p.Location()), time.Date(2026, 10, 19, 19, 30, 0, 0, p.Location())},
		{time.Date(2026, 10, 18, 8, 0, 0, 0, p.Location()), time.Date(2026, 10, 19, 19, 30, 0, 0, p.Location())},
	}
	for _, tc := range cases {
		slot := p.nextMondayFallback(tc.now)
		assert.Equal(t, tc.want, slot.At, "now=%s", tc.now)
		assert.Equal(t, "monday", slot.Weekday)
		assert.Equal(t, "19:00-20:00", slot.TimeRange)
	}
}

func TestNextOptimalSlot_UsesClock(t *testing.T) {
	p := bangkokPolicy(t)
	fixed := time.Date(2026, 10, 17, 12, 0, 0, 0, p.Location()) // Saturday
	p = p.WithClock(func() time.Time { return fixed })

	slot := p.NextOptimalSlot()
	assert.Equal(t, time.Date(2026, 10, 17, 17, 30, 0, 0, p.Location()), slot.At)
	assert.Equal(t, "saturday", slot.Weekday)
}

func TestNextSlotAfter_CustomTable(t *testing.T) {
	weekly := config.DefaultWeekly()
	weekly["thursday"] = config.SlotConfig{Time: "06:05", Range: "06:00-07:00"}
	table, err := NewTable(weekly)
	require.NoError(t, err)

	p := NewPolicyInLocation(time.UTC, table)
	slot := p.NextSlotAfter(time.Date(2026, 10, 15, 6, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 10, 15, 6, 5, 0, 0, time.UTC), slot.At)
	assert.Equal(t, "thursday", slot.WeekdayLabel)
}
