package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/autoasmr/api/internal/logger"
	"github.com/autoasmr/api/internal/model"
)

// QueueJobs is the asynq queue pipeline runs are enqueued on.
const QueueJobs = "jobs"

// Executor runs one pipeline execution to completion.
type Executor interface {
	Execute(ctx context.Context, jobID string, mode model.RunMode) error
}

// Task is one requested pipeline run.
type Task struct {
	JobID string
	Mode  model.RunMode
}

// Dispatcher hands runs off so the caller never waits for a pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, task Task, delay time.Duration) error
}

// PoolDispatcher runs pipelines on goroutines in this process, at most
// concurrency at a time. Zero concurrency means no limit.
type PoolDispatcher struct {
	runner Executor
	slots  chan struct{}
	ctx    context.Context
	wg     sync.WaitGroup
	log    *zap.SugaredLogger
}

// NewPoolDispatcher creates an in-process dispatcher.
func NewPoolDispatcher(runner Executor, concurrency int, log *zap.SugaredLogger) *PoolDispatcher {
	d := &PoolDispatcher{
		runner: runner,
		ctx:    context.Background(),
		log:    log.With(logger.FieldComponent, "dispatcher"),
	}
	if concurrency > 0 {
		d.slots = make(chan struct{}, concurrency)
	}
	return d
}

// Dispatch schedules the run after delay and returns immediately. Runs are
// detached from ctx.
func (d *PoolDispatcher) Dispatch(ctx context.Context, task Task, delay time.Duration) error {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if delay > 0 {
			time.Sleep(delay)
		}
		if d.slots != nil {
			d.slots <- struct{}{}
			defer func() { <-d.slots }()
		}

		if err := d.runner.Execute(d.ctx, task.JobID, task.Mode); err != nil {
			d.log.Warnw("Dispatched run did not start", logger.FieldJobID, task.JobID, logger.FieldMode, task.Mode, logger.FieldError, err)
		}
	}()
	return nil
}

// Wait blocks until every dispatched run has finished.
func (d *PoolDispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown waits for in-flight runs until ctx is done.
func (d *PoolDispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AsynqDispatcher enqueues runs on redis for the asynq worker server.
type AsynqDispatcher struct {
	client *asynq.Client
}

func NewAsynqDispatcher(client *asynq.Client) *AsynqDispatcher {
	return &AsynqDispatcher{client: client}
}

// Dispatch enqueues the run without retries, delayed by delay.
func (d *AsynqDispatcher) Dispatch(ctx context.Context, task Task, delay time.Duration) error {
	t, err := NewRunTask(task)
	if err != nil {
		return err
	}

	opts := []asynq.Option{
		asynq.Queue(QueueJobs),
		asynq.MaxRetry(0),
		asynq.Retention(24 * time.Hour),
	}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	if _, err := d.client.EnqueueContext(ctx, t, opts...); err != nil {
		return errors.Wrap(err, "failed to enqueue task")
	}
	return nil
}

// NewRunTask serializes a run for the asynq queue.
func NewRunTask(task Task) (*asynq.Task, error) {
	mode := task.Mode
	if mode == "" {
		mode = model.RunModeFull
	}
	data, err := json.Marshal(TaskPayload{JobID: task.JobID, Mode: mode})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal task payload")
	}
	return asynq.NewTask(TaskTypeJobRun, data), nil
}
