package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/autoasmr/api/internal/logger"
	"github.com/autoasmr/api/internal/model"
	"github.com/autoasmr/api/internal/schedule"
	"github.com/autoasmr/api/internal/store"
)

// DefaultTickInterval is how often the loop looks for due triggers.
const DefaultTickInterval = 60 * time.Second

type trigger struct {
	slot  schedule.Slot
	sched cron.Schedule
	next  time.Time
}

// Scheduler holds the daily publish triggers, one per weekday, and fires the
// due ones from a polling loop.
type Scheduler struct {
	mu       sync.Mutex
	triggers []*trigger

	policy   *schedule.Policy
	jobs     *store.JobStore
	activity *store.ActivityLog
	runner   Executor
	interval time.Duration
	log      *zap.SugaredLogger

	runCtx context.Context
	cancel context.CancelFunc
	loop   sync.WaitGroup
	runs   sync.WaitGroup
}

// NewScheduler creates a scheduler. A non-positive interval uses DefaultTickInterval.
func NewScheduler(policy *schedule.Policy, jobs *store.JobStore, activity *store.ActivityLog, runner Executor, interval time.Duration, log *zap.SugaredLogger) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{
		policy:   policy,
		jobs:     jobs,
		activity: activity,
		runner:   runner,
		interval: interval,
		log:      log.With(logger.FieldComponent, "scheduler"),
		runCtx:   context.Background(),
	}
}

// Enable replaces any registered daily triggers with one per weekday.
func (s *Scheduler) Enable() error {
	now := s.policy.Now()
	loc := s.policy.Location()

	triggers := make([]*trigger, 0, len(schedule.Weekdays))
	for _, slot := range s.policy.Table().Slots() {
		sched, err := cron.ParseStandard(slot.CronSpec(loc.String()))
		if err != nil {
			return errors.Wrapf(err, "failed to build trigger for %s", slot.Name())
		}
		triggers = append(triggers, &trigger{slot: slot, sched: sched, next: sched.Next(now)})
	}

	s.mu.Lock()
	s.triggers = triggers
	s.mu.Unlock()

	s.log.Infow("Daily scheduling enabled", logger.FieldCount, len(triggers))
	return nil
}

// Disable removes all daily triggers. Jobs already created are untouched.
func (s *Scheduler) Disable() {
	s.mu.Lock()
	s.triggers = nil
	s.mu.Unlock()
	s.log.Infow("Daily scheduling disabled")
}

// TriggerCount returns the number of registered daily triggers.
func (s *Scheduler) TriggerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.triggers)
}

// Enabled reports whether daily triggers are registered.
func (s *Scheduler) Enabled() bool {
	return s.TriggerCount() > 0
}

// Tick fires every trigger that is due at now and returns the ids of the jobs
// it created. Each fired trigger runs its job on its own goroutine.
func (s *Scheduler) Tick(now time.Time) []string {
	s.mu.Lock()
	runCtx := s.runCtx
	var due []schedule.Slot
	for _, t := range s.triggers {
		if !now.Before(t.next) {
			due = append(due, t.slot)
			t.next = t.sched.Next(now)
		}
	}
	s.mu.Unlock()

	ids := make([]string, 0, len(due))
	for _, slot := range due {
		job, err := s.createDailyJob(slot, now)
		if err != nil {
			s.log.Errorw("Failed to create daily job", logger.FieldWeekday, slot.Name(), logger.FieldError, err)
			continue
		}
		ids = append(ids, job.ID)

		s.runs.Add(1)
		go func(jobID string) {
			defer s.runs.Done()
			if err := s.runner.Execute(runCtx, jobID, model.RunModeFull); err != nil {
				s.log.Warnw("Daily job did not run", logger.FieldJobID, jobID, logger.FieldError, err)
			}
		}(job.ID)
	}
	return ids
}

func (s *Scheduler) createDailyJob(slot schedule.Slot, now time.Time) (*model.Job, error) {
	job := &model.Job{
		ID:           "daily_" + uuid.NewString(),
		Name:         "Daily ASMR - " + slot.Label,
		Prompt:       model.PromptAuto,
		ScheduleTime: model.ScheduleDailyAuto,
		Status:       model.JobStatusScheduled,
		CreatedAt:    now,
	}
	if err := s.jobs.Add(job); err != nil {
		return nil, err
	}

	s.activity.Info(job.ID, fmt.Sprintf("Created daily job for %s", slot.Name()))
	s.log.Infow("Daily job created", logger.FieldJobID, job.ID, logger.FieldWeekday, slot.Name())
	return job, nil
}

// Start runs the polling loop until ctx is done or Stop is called.
// Fired runs are not cancelled by either.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.runCtx = context.WithoutCancel(ctx)
	s.mu.Unlock()

	s.loop.Add(1)
	go func() {
		defer s.loop.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(s.policy.Now())
			}
		}
	}()
}

// Stop ends the polling loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.loop.Wait()
}

// Wait blocks until every fired run has finished.
func (s *Scheduler) Wait() {
	s.runs.Wait()
}
