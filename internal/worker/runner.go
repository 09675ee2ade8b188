package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/autoasmr/api/internal/client"
	"github.com/autoasmr/api/internal/logger"
	"github.com/autoasmr/api/internal/model"
	"github.com/autoasmr/api/internal/store"
	"github.com/autoasmr/api/internal/synth"
)

// TaskTypeJobRun is the asynq task type for a pipeline run.
const TaskTypeJobRun = "job:run"

// Preview lengths for activity entries, in runes.
const (
	promptPreview  = 100
	captionPreview = 50
)

// ErrNothingToPublish is returned for a publish-only run on a job without a video.
var ErrNothingToPublish = errors.New("job has no generated video to publish")

// TaskPayload is the serialized form of a dispatched run.
type TaskPayload struct {
	JobID string        `json:"job_id"`
	Mode  model.RunMode `json:"mode"`
}

// JobRunner drives a job through prompt resolution, generation, captioning
// and publishing. Every failure is recorded on the job; nothing propagates
// to whoever dispatched the run.
type JobRunner struct {
	jobs      *store.JobStore
	activity  *store.ActivityLog
	prompts   *synth.PromptSynthesizer
	captions  *synth.CaptionSynthesizer
	generator client.VideoGenerator
	publisher client.Publisher
	now       func() time.Time
	log       *zap.SugaredLogger
}

// NewJobRunner creates a new job runner
func NewJobRunner(
	jobs *store.JobStore,
	activity *store.ActivityLog,
	prompts *synth.PromptSynthesizer,
	captions *synth.CaptionSynthesizer,
	generator client.VideoGenerator,
	publisher client.Publisher,
	log *zap.SugaredLogger,
) *JobRunner {
	return &JobRunner{
		jobs:      jobs,
		activity:  activity,
		prompts:   prompts,
		captions:  captions,
		generator: generator,
		publisher: publisher,
		now:       time.Now,
		log:       log.With(logger.FieldComponent, "runner"),
	}
}

// WithClock replaces the clock used for last_run stamps.
func (r *JobRunner) WithClock(now func() time.Time) *JobRunner {
	r.now = now
	return r
}

// Execute runs the pipeline for jobID in the given mode. It only returns an
// error when the run could not start at all.
func (r *JobRunner) Execute(ctx context.Context, jobID string, mode model.RunMode) error {
	job, err := r.jobs.Get(jobID)
	if err != nil {
		r.log.Warnw("Run skipped", logger.FieldJobID, jobID, logger.FieldError, err)
		return err
	}

	switch mode {
	case model.RunModePublishOnly:
		if job.VideoURL == nil {
			r.log.Warnw("Publish retry skipped", logger.FieldJobID, jobID)
			return ErrNothingToPublish
		}
		r.retryPublish(ctx, job)
	default:
		r.run(ctx, job)
	}
	return nil
}

// Run executes the full pipeline synchronously and returns the final job.
func (r *JobRunner) Run(ctx context.Context, jobID string) (*model.Job, error) {
	if err := r.Execute(ctx, jobID, model.RunModeFull); err != nil {
		return nil, err
	}
	return r.jobs.Get(jobID)
}

// ProcessTask handles a dispatched run from the asynq queue
func (r *JobRunner) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return errors.Wrapf(asynq.SkipRetry, "failed to unmarshal task payload: %v", err)
	}
	if err := r.Execute(ctx, payload.JobID, payload.Mode); err != nil {
		return errors.Wrapf(asynq.SkipRetry, "job %s: %v", payload.JobID, err)
	}
	return nil
}

func (r *JobRunner) run(ctx context.Context, job *model.Job) {
	defer r.recoverRun(job)

	now := r.now()
	job.Status = model.JobStatusRunning
	job.LastRun = &now
	job.VideoURL = nil
	job.TikTokURL = nil
	job.Caption = nil
	job.DurationSeconds = 0
	job.PublishID = ""
	job.EmbedURL = ""
	r.save(job)

	r.log.Infow("Job started", logger.FieldJobID, job.ID, logger.FieldMode, model.RunModeFull)
	if job.IsAutoPrompt() {
		r.activity.Info(job.ID, "Starting auto job...")
		job.Prompt = r.prompts.Synthesize()
		r.save(job)
		r.activity.Success(job.ID, "Prompt synthesized: "+preview(job.Prompt, promptPreview))
	} else {
		r.activity.Info(job.ID, "Starting job...")
	}

	r.activity.Info(job.ID, "Generating ASMR video...")
	video, err := r.generator.Generate(ctx, job.Prompt)
	if err != nil {
		r.fail(job, model.JobStatusFailed, err)
		r.activity.Error(job.ID, "Video generation failed: "+err.Error())
		return
	}
	job.VideoURL = &video.VideoURL
	job.DurationSeconds = video.DurationSeconds
	r.save(job)
	if video.AudioIncluded {
		r.activity.Success(job.ID, fmt.Sprintf("Video generated (%ds) with ASMR audio", video.DurationSeconds))
	} else {
		r.activity.Success(job.ID, fmt.Sprintf("Video generated (%ds)", video.DurationSeconds))
	}

	r.activity.Info(job.ID, "Generating caption and hashtags...")
	caption := r.captions.Synthesize(job.Prompt)
	job.Caption = &caption
	r.save(job)
	r.activity.Success(job.ID, "Caption: "+preview(caption, captionPreview))

	if !r.publish(ctx, job, caption) {
		return
	}
	r.activity.Info(job.ID, fmt.Sprintf("Stats: %ds | ASMR audio: %s | quality: HD", video.DurationSeconds, yesNo(video.AudioIncluded)))
	r.activity.Success(job.ID, "Auto job complete")
}

func (r *JobRunner) retryPublish(ctx context.Context, job *model.Job) {
	defer r.recoverRun(job)

	now := r.now()
	job.Status = model.JobStatusRunning
	job.LastRun = &now
	r.save(job)

	r.log.Infow("Job started", logger.FieldJobID, job.ID, logger.FieldMode, model.RunModePublishOnly)
	r.activity.Info(job.ID, "Retrying publish...")

	if job.Caption == nil {
		caption := r.captions.Synthesize(job.Prompt)
		job.Caption = &caption
		r.save(job)
		r.activity.Success(job.ID, "Caption: "+preview(caption, captionPreview))
	}

	if r.publish(ctx, job, *job.Caption) {
		r.activity.Success(job.ID, "Publish retry complete")
	}
}

// publish runs the upload step and reports whether it succeeded.
func (r *JobRunner) publish(ctx context.Context, job *model.Job, caption string) bool {
	r.activity.Info(job.ID, "Uploading to TikTok...")
	res, err := r.publisher.Publish(ctx, *job.VideoURL, caption)
	if err != nil {
		r.fail(job, model.JobStatusPartialSuccess, err)
		r.activity.Error(job.ID, "Upload failed: "+err.Error())
		return false
	}

	job.TikTokURL = &res.PublicURL
	job.PublishID = res.PublishID
	job.EmbedURL = res.EmbedURL
	job.Status = model.JobStatusCompleted
	job.ErrorMessage = nil
	r.save(job)

	r.log.Infow("Job completed", logger.FieldJobID, job.ID, "tiktok_url", res.PublicURL)
	r.activity.Success(job.ID, "Published! TikTok URL: "+res.PublicURL)
	return true
}

func (r *JobRunner) fail(job *model.Job, status model.JobStatus, err error) {
	msg := err.Error()
	job.Status = status
	job.ErrorMessage = &msg
	r.save(job)
	r.log.Warnw("Job run failed", logger.FieldJobID, job.ID, logger.FieldStatus, status, logger.FieldError, err)
}

func (r *JobRunner) recoverRun(job *model.Job) {
	rec := recover()
	if rec == nil {
		return
	}
	err := errors.Newf("unexpected error: %v", rec)
	r.fail(job, model.JobStatusFailed, err)
	r.activity.Error(job.ID, "Job failed: "+err.Error())
}

// save writes the runner's copy back. A job deleted mid-run keeps running
// detached from the store.
func (r *JobRunner) save(job *model.Job) {
	snapshot := job.Clone()
	_, err := r.jobs.Update(job.ID, func(stored *model.Job) {
		*stored = *snapshot
	})
	if err != nil && !errors.Is(err, store.ErrJobNotFound) {
		r.log.Errorw("Failed to save job", logger.FieldJobID, job.ID, logger.FieldError, err)
	}
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
