package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoasmr/api/internal/logger"
	"github.com/autoasmr/api/internal/model"
	"github.com/autoasmr/api/internal/schedule"
)

func bangkok(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)
	return loc
}

func newTestScheduler(t *testing.T, f *fixture, now time.Time) *Scheduler {
	t.Helper()
	policy, err := schedule.NewPolicy("Asia/Bangkok", schedule.DefaultTable())
	require.NoError(t, err)
	policy = policy.WithClock(func() time.Time { return now })
	return NewScheduler(policy, f.jobs, f.activity, f.runner, time.Minute, logger.Nop())
}

func TestScheduler_EnableTwiceRegistersSevenTriggers(t *testing.T) {
	f := newFixture()
	s := newTestScheduler(t, f, time.Date(2026, 10, 15, 12, 0, 0, 0, bangkok(t)))

	require.NoError(t, s.Enable())
	require.NoError(t, s.Enable())
	assert.Equal(t, 7, s.TriggerCount())
	assert.True(t, s.Enabled())

	s.Disable()
	assert.Equal(t, 0, s.TriggerCount())
	assert.False(t, s.Enabled())
}

func TestScheduler_TickFiresDueTrigger(t *testing.T) {
	loc := bangkok(t)
	f := newFixture()
	s := newTestScheduler(t, f, time.Date(2026, 10, 15, 17, 0, 0, 0, loc))
	require.NoError(t, s.Enable())

	assert.Empty(t, s.Tick(time.Date(2026, 10, 15, 17, 29, 0, 0, loc)))

	ids := s.Tick(time.Date(2026, 10, 15, 17, 30, 0, 0, loc))
	require.Len(t, ids, 1)
	s.Wait()

	job, err := f.jobs.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Daily ASMR - วันพฤหัสบดี", job.Name)
	assert.Equal(t, model.ScheduleDailyAuto, job.ScheduleTime)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.NotEqual(t, model.PromptAuto, job.Prompt)

	logs := f.activity.ForJob(ids[0])
	require.NotEmpty(t, logs)
	assert.Equal(t, "Created daily job for thursday", logs[0].Message)

	assert.Empty(t, s.Tick(time.Date(2026, 10, 15, 17, 31, 0, 0, loc)))
}

func TestScheduler_TickAfterDisableFiresNothing(t *testing.T) {
	loc := bangkok(t)
	f := newFixture()
	s := newTestScheduler(t, f, time.Date(2026, 10, 15, 17, 0, 0, 0, loc))
	require.NoError(t, s.Enable())
	s.Disable()

	assert.Empty(t, s.Tick(time.Date(2026, 10, 22, 18, 0, 0, 0, loc)))
	assert.Equal(t, 0, f.jobs.Count())
}

func TestScheduler_MissedTicksFireOnce(t *testing.T) {
	loc := bangkok(t)
	f := newFixture()
	s := newTestScheduler(t, f, time.Date(2026, 10, 15, 17, 0, 0, 0, loc))
	require.NoError(t, s.Enable())

	// Thursday and Friday slots both passed since the last tick.
	ids := s.Tick(time.Date(2026, 10, 16, 18, 0, 0, 0, loc))
	s.Wait()
	assert.Len(t, ids, 2)
	assert.Equal(t, 2, f.jobs.Count())
}

func TestScheduler_StartStop(t *testing.T) {
	f := newFixture()
	s := newTestScheduler(t, f, time.Date(2026, 10, 15, 12, 0, 0, 0, bangkok(t)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
