package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autoasmr/api/internal/logger"
	"github.com/autoasmr/api/internal/model"
	"github.com/autoasmr/api/internal/schedule"
	"github.com/autoasmr/api/internal/store"
	"github.com/autoasmr/api/internal/worker"
)

// Batch and log view bounds
const (
	DefaultBatchCount = 3
	MaxBatchCount     = 20
	DefaultLogLimit   = 100
	MaxLogLimit       = 1000
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	// ErrInvalidState is returned when a job is not in a state the operation accepts.
	ErrInvalidState = errors.New("invalid job state")
	// ErrInvalidInput is returned for out-of-range request parameters.
	ErrInvalidInput = errors.New("invalid input")
)

// JobService implements the job and schedule operations behind the HTTP API.
type JobService struct {
	jobs       *store.JobStore
	activity   *store.ActivityLog
	policy     *schedule.Policy
	scheduler  *worker.Scheduler
	dispatcher worker.Dispatcher
	stagger    time.Duration
	log        *zap.SugaredLogger
}

func NewJobService(
	jobs *store.JobStore,
	activity *store.ActivityLog,
	policy *schedule.Policy,
	scheduler *worker.Scheduler,
	dispatcher worker.Dispatcher,
	batchStagger time.Duration,
	log *zap.SugaredLogger,
) *JobService {
	return &JobService{
		jobs:       jobs,
		activity:   activity,
		policy:     policy,
		scheduler:  scheduler,
		dispatcher: dispatcher,
		stagger:    batchStagger,
		log:        log.With(logger.FieldComponent, "job_service"),
	}
}

// CreateAutoJob stores an auto-mode job and starts it in the background.
func (s *JobService) CreateAutoJob(ctx context.Context) (*model.CreateAutoJobResponse, error) {
	job := s.newJob("auto_", fmt.Sprintf("Auto ASMR #%d", s.jobs.Count()+1), model.PromptAuto, model.ScheduleManual)
	if err := s.jobs.Add(job); err != nil {
		return nil, errors.Wrap(err, "failed to store job")
	}

	if err := s.dispatcher.Dispatch(ctx, worker.Task{JobID: job.ID, Mode: model.RunModeFull}, 0); err != nil {
		return nil, errors.Wrapf(err, "failed to start job %s", job.ID)
	}

	s.log.Infow("Auto job created", logger.FieldJobID, job.ID)
	return &model.CreateAutoJobResponse{
		Success: true,
		JobID:   job.ID,
		Message: "Auto job started - generating ASMR video...",
	}, nil
}

// CreateBatch stores count auto-mode jobs and starts them with an increasing
// delay. A nil count means DefaultBatchCount.
func (s *JobService) CreateBatch(ctx context.Context, count *int) (*model.CreateBatchResponse, error) {
	n := DefaultBatchCount
	if count != nil {
		n = *count
	}
	if n < 1 || n > MaxBatchCount {
		return nil, errors.Wrapf(ErrInvalidInput, "count must be between 1 and %d", MaxBatchCount)
	}

	base := s.jobs.Count()
	created := make([]string, 0, n)
	for i := 0; i < n; i++ {
		job := s.newJob("batch_", fmt.Sprintf("Auto ASMR Batch #%d", base+i+1), model.PromptAuto, model.ScheduleManual)
		if err := s.jobs.Add(job); err != nil {
			return nil, errors.Wrap(err, "failed to store job")
		}
		delay := time.Duration(i) * s.stagger
		if err := s.dispatcher.Dispatch(ctx, worker.Task{JobID: job.ID, Mode: model.RunModeFull}, delay); err != nil {
			return nil, errors.Wrapf(err, "failed to start job %s", job.ID)
		}
		created = append(created, job.ID)
	}

	s.log.Infow("Batch created", logger.FieldCount, n)
	return &model.CreateBatchResponse{
		Success:     true,
		CreatedJobs: created,
		Count:       len(created),
		Message:     fmt.Sprintf("Created %d auto jobs", len(created)),
	}, nil
}

// EnableDaily (re)registers the weekly triggers.
func (s *JobService) EnableDaily() (*model.EnableScheduleResponse, error) {
	if err := s.scheduler.Enable(); err != nil {
		return nil, err
	}

	next := s.policy.NextOptimalSlot()
	return &model.EnableScheduleResponse{
		Success: true,
		Message: "Daily auto-upload enabled",
		NextUpload: model.NextUploadSummary{
			Date:    next.At.Format("2006-01-02"),
			Time:    next.At.Format("15:04"),
			Weekday: next.Weekday,
			Label:   next.WeekdayLabel,
			Range:   next.TimeRange,
		},
		ScheduleTable: s.policy.Table().Entries(),
	}, nil
}

// DisableDaily removes the weekly triggers.
func (s *JobService) DisableDaily() *model.SuccessResponse {
	s.scheduler.Disable()
	return &model.SuccessResponse{Success: true, Message: "Daily auto-upload disabled"}
}

// ScheduleStatus reports the scheduler state and the next slot.
func (s *JobService) ScheduleStatus() *model.ScheduleStatusResponse {
	now := s.policy.Now()
	next := s.policy.NextSlotAfter(now)

	return &model.ScheduleStatusResponse{
		CurrentTime:           now.Format(timestampLayout),
		Enabled:               s.scheduler.Enabled(),
		ScheduledTriggerCount: s.scheduler.TriggerCount(),
		NextUpload: model.NextUploadStatus{
			Datetime:   next.At.Format(timestampLayout),
			Weekday:    next.Weekday,
			Label:      next.WeekdayLabel,
			TimeRange:  next.TimeRange,
			HoursUntil: int(next.At.Sub(now).Hours()),
		},
		ScheduleTable: s.policy.Table().Entries(),
	}
}

// CreateJob stores an explicit job without running it.
func (s *JobService) CreateJob(req *model.CreateJobRequest) (*model.CreateJobResponse, error) {
	job := s.newJob("job_", req.Name, req.Prompt, req.ScheduleTime)
	if err := s.jobs.Add(job); err != nil {
		return nil, errors.Wrap(err, "failed to store job")
	}
	s.log.Infow("Job created", logger.FieldJobID, job.ID)
	return &model.CreateJobResponse{Success: true, JobID: job.ID}, nil
}

// RunJob starts the full pipeline for an existing job in any state.
func (s *JobService) RunJob(ctx context.Context, jobID string) (*model.SuccessResponse, error) {
	if _, err := s.jobs.Get(jobID); err != nil {
		return nil, err
	}
	if err := s.dispatcher.Dispatch(ctx, worker.Task{JobID: jobID, Mode: model.RunModeFull}, 0); err != nil {
		return nil, errors.Wrapf(err, "failed to start job %s", jobID)
	}
	return &model.SuccessResponse{Success: true, Message: "Job started"}, nil
}

// RetryPublish re-runs only the publish step of a partial_success job.
func (s *JobService) RetryPublish(ctx context.Context, jobID string) (*model.SuccessResponse, error) {
	var previous model.JobStatus
	_, err := s.jobs.Update(jobID, func(job *model.Job) {
		previous = job.Status
		if previous == model.JobStatusPartialSuccess {
			job.Status = model.JobStatusRunning
		}
	})
	if err != nil {
		return nil, err
	}
	if previous != model.JobStatusPartialSuccess {
		return nil, errors.Wrapf(ErrInvalidState, "job is %s, only %s can be republished", previous, model.JobStatusPartialSuccess)
	}

	if err := s.dispatcher.Dispatch(ctx, worker.Task{JobID: jobID, Mode: model.RunModePublishOnly}, 0); err != nil {
		_, _ = s.jobs.Update(jobID, func(job *model.Job) { job.Status = model.JobStatusPartialSuccess })
		return nil, errors.Wrapf(err, "failed to start publish retry for %s", jobID)
	}
	return &model.SuccessResponse{Success: true, Message: "Publish retry started"}, nil
}

// GetStatus returns the status view of a job.
func (s *JobService) GetStatus(jobID string) (*model.JobStatusResponse, error) {
	job, err := s.jobs.Get(jobID)
	if err != nil {
		return nil, err
	}
	return &model.JobStatusResponse{
		ID:           job.ID,
		Status:       job.Status,
		LastRun:      job.LastRun,
		VideoURL:     job.VideoURL,
		TikTokURL:    job.TikTokURL,
		ErrorMessage: job.ErrorMessage,
	}, nil
}

// DeleteJob removes a job. Its activity entries remain.
func (s *JobService) DeleteJob(jobID string) (*model.SuccessResponse, error) {
	if err := s.jobs.Delete(jobID); err != nil {
		return nil, err
	}
	s.log.Infow("Job deleted", logger.FieldJobID, jobID)
	return &model.SuccessResponse{Success: true, Message: "Job deleted"}, nil
}

// ListJobs returns every job, newest first.
func (s *JobService) ListJobs() *model.JobListResponse {
	jobs := s.jobs.List()
	return &model.JobListResponse{Jobs: jobs, Count: len(jobs)}
}

// ListLogs returns the most recent activity entries, newest first.
// A nil limit means DefaultLogLimit.
func (s *JobService) ListLogs(limit *int) (*model.LogListResponse, error) {
	n := DefaultLogLimit
	if limit != nil {
		n = *limit
	}
	if n < 1 || n > MaxLogLimit {
		return nil, errors.Wrapf(ErrInvalidInput, "limit must be between 1 and %d", MaxLogLimit)
	}
	logs := s.activity.Recent(n)
	return &model.LogListResponse{Logs: logs, Count: len(logs)}, nil
}

// JobDetail returns a job with its own activity entries, oldest first.
func (s *JobService) JobDetail(jobID string) (*model.JobDetailResponse, error) {
	job, err := s.jobs.Get(jobID)
	if err != nil {
		return nil, err
	}
	logs := s.activity.ForJob(jobID)
	if logs == nil {
		logs = []model.ActivityEntry{}
	}
	return &model.JobDetailResponse{Job: job, Logs: logs}, nil
}

func (s *JobService) newJob(prefix, name, prompt, scheduleTime string) *model.Job {
	return &model.Job{
		ID:           prefix + uuid.NewString(),
		Name:         name,
		Prompt:       prompt,
		ScheduleTime: scheduleTime,
		Status:       model.JobStatusScheduled,
		CreatedAt:    s.policy.Now(),
	}
}
