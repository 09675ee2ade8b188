package worker

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoasmr/api/internal/logger"
	"github.com/autoasmr/api/internal/model"
	"github.com/autoasmr/api/internal/store"
	"github.com/autoasmr/api/internal/synth"
)

type stubGenerator struct {
	result *model.VideoResult
	err    error
	panics bool
	calls  atomic.Int32
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (*model.VideoResult, error) {
	g.calls.Add(1)
	if g.panics {
		panic("generator exploded")
	}
	if g.err != nil {
		return nil, g.err
	}
	res := *g.result
	return &res, nil
}

func (g *stubGenerator) IsConfigured() bool { return true }

type stubPublisher struct {
	result   *model.PublishResult
	err      error
	calls    atomic.Int32
	mu       sync.Mutex
	captions []string
}

func (p *stubPublisher) Publish(ctx context.Context, videoURL, caption string) (*model.PublishResult, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.captions = append(p.captions, caption)
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	res := *p.result
	return &res, nil
}

func (p *stubPublisher) IsConfigured() bool { return true }

type fixture struct {
	jobs      *store.JobStore
	activity  *store.ActivityLog
	generator *stubGenerator
	publisher *stubPublisher
	runner    *JobRunner
}

func newFixture() *fixture {
	f := &fixture{
		jobs:     store.NewJobStore(),
		activity: store.NewActivityLog(store.DefaultMaxEntries, nil),
		generator: &stubGenerator{result: &model.VideoResult{
			VideoURL: "v1", DurationSeconds: 10, AudioIncluded: true,
		}},
		publisher: &stubPublisher{result: &model.PublishResult{
			PublicURL: "t1", PublishID: "p1", EmbedURL: "e1",
		}},
	}
	r := synth.Locked(synth.NewSeeded(42))
	f.runner = NewJobRunner(
		f.jobs, f.activity,
		synth.NewPromptSynthesizer(r), synth.NewCaptionSynthesizer(r),
		f.generator, f.publisher, logger.Nop(),
	)
	return f
}

func (f *fixture) addJob(t *testing.T, id, prompt string) {
	t.Helper()
	require.NoError(t, f.jobs.Add(&model.Job{
		ID:           id,
		Name:         "test",
		Prompt:       prompt,
		ScheduleTime: model.ScheduleManual,
		Status:       model.JobStatusScheduled,
		CreatedAt:    time.Now(),
	}))
}

func TestRunner_CompletedRun(t *testing.T) {
	f := newFixture()
	f.addJob(t, "j1", "")
	fixed := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	f.runner.WithClock(func() time.Time { return fixed })

	job, err := f.runner.Run(context.Background(), "j1")
	require.NoError(t, err)

	assert.Equal(t, model.JobStatusCompleted, job.Status)
	require.NotNil(t, job.VideoURL)
	assert.Equal(t, "v1", *job.VideoURL)
	require.NotNil(t, job.TikTokURL)
	assert.Equal(t, "t1", *job.TikTokURL)
	assert.Nil(t, job.ErrorMessage)
	require.NotNil(t, job.LastRun)
	assert.Equal(t, fixed, *job.LastRun)
	assert.Equal(t, 10, job.DurationSeconds)
	assert.Equal(t, "p1", job.PublishID)
	assert.Equal(t, "e1", job.EmbedURL)
	require.NotNil(t, job.Caption)

	logs := f.activity.ForJob("j1")
	require.GreaterOrEqual(t, len(logs), 5)
	assert.Equal(t, model.LogLevelInfo, logs[0].Level)
	assert.Equal(t, model.LogLevelSuccess, logs[len(logs)-1].Level)
}

func TestRunner_AutoPromptIsReplaced(t *testing.T) {
	for _, prompt := range []string{"", "auto", "AUTO", "Auto"} {
		f := newFixture()
		f.addJob(t, "j", prompt)

		job, err := f.runner.Run(context.Background(), "j")
		require.NoError(t, err)
		assert.NotEmpty(t, job.Prompt)
		assert.False(t, strings.EqualFold(job.Prompt, "auto"))
		assert.True(t, strings.HasSuffix(job.Prompt, synth.ClosingClause))
	}
}

func TestRunner_ExplicitPromptIsKept(t *testing.T) {
	f := newFixture()
	f.addJob(t, "j", "slicing a glass kiwi")

	job, err := f.runner.Run(context.Background(), "j")
	require.NoError(t, err)
	assert.Equal(t, "slicing a glass kiwi", job.Prompt)
}

func TestRunner_GenerationFailure(t *testing.T) {
	f := newFixture()
	f.generator.err = errors.New("quota exceeded")
	f.addJob(t, "j", "auto")

	job, err := f.runner.Run(context.Background(), "j")
	require.NoError(t, err)

	assert.Equal(t, model.JobStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "quota exceeded")
	assert.Nil(t, job.VideoURL)
	assert.Nil(t, job.TikTokURL)
	assert.Equal(t, int32(0), f.publisher.calls.Load())

	logs := f.activity.ForJob("j")
	require.NotEmpty(t, logs)
	assert.Equal(t, model.LogLevelError, logs[len(logs)-1].Level)
}

func TestRunner_PublishFailure(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("token expired")
	f.addJob(t, "j", "auto")

	job, err := f.runner.Run(context.Background(), "j")
	require.NoError(t, err)

	assert.Equal(t, model.JobStatusPartialSuccess, job.Status)
	require.NotNil(t, job.VideoURL)
	assert.Equal(t, "v1", *job.VideoURL)
	assert.Nil(t, job.TikTokURL)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "token expired")
	assert.NotNil(t, job.Caption)
}

func TestRunner_PanicIsRecorded(t *testing.T) {
	f := newFixture()
	f.generator.panics = true
	f.addJob(t, "j", "auto")

	var job *model.Job
	require.NotPanics(t, func() {
		var err error
		job, err = f.runner.Run(context.Background(), "j")
		require.NoError(t, err)
	})

	assert.Equal(t, model.JobStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "generator exploded")
}

func TestRunner_RerunClearsPreviousError(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("token expired")
	f.addJob(t, "j", "auto")
	_, err := f.runner.Run(context.Background(), "j")
	require.NoError(t, err)

	f.publisher.err = nil
	job, err := f.runner.Run(context.Background(), "j")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.Nil(t, job.ErrorMessage)
	assert.Equal(t, int32(2), f.generator.calls.Load())
}

func TestRunner_RetryPublishReusesVideoAndCaption(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("token expired")
	f.addJob(t, "j", "auto")
	_, err := f.runner.Run(context.Background(), "j")
	require.NoError(t, err)

	f.publisher.err = nil
	require.NoError(t, f.runner.Execute(context.Background(), "j", model.RunModePublishOnly))

	job, err := f.jobs.Get("j")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.Equal(t, "t1", *job.TikTokURL)
	assert.Nil(t, job.ErrorMessage)
	assert.Equal(t, int32(1), f.generator.calls.Load())
	require.Len(t, f.publisher.captions, 2)
	assert.Equal(t, f.publisher.captions[0], f.publisher.captions[1])
}

func TestRunner_RetryPublishWithoutVideo(t *testing.T) {
	f := newFixture()
	f.addJob(t, "j", "auto")

	err := f.runner.Execute(context.Background(), "j", model.RunModePublishOnly)
	assert.True(t, errors.Is(err, ErrNothingToPublish))
	assert.Equal(t, int32(0), f.publisher.calls.Load())
}

func TestRunner_MissingJob(t *testing.T) {
	f := newFixture()
	err := f.runner.Execute(context.Background(), "nope", model.RunModeFull)
	assert.True(t, errors.Is(err, store.ErrJobNotFound))
}

func TestRunner_JobDeletedMidRun(t *testing.T) {
	f := newFixture()
	f.addJob(t, "j", "auto")

	deleting := &deletingGenerator{jobs: f.jobs, inner: f.generator}
	f.runner.generator = deleting

	require.NoError(t, f.runner.Execute(context.Background(), "j", model.RunModeFull))
	assert.Equal(t, 0, f.jobs.Count())
	assert.Equal(t, int32(1), f.publisher.calls.Load())
	logs := f.activity.ForJob("j")
	assert.Equal(t, model.LogLevelSuccess, logs[len(logs)-1].Level)
}

type deletingGenerator struct {
	jobs  *store.JobStore
	inner *stubGenerator
}

func (g *deletingGenerator) Generate(ctx context.Context, prompt string) (*model.VideoResult, error) {
	_ = g.jobs.Delete("j")
	return g.inner.Generate(ctx, prompt)
}

func (g *deletingGenerator) IsConfigured() bool { return true }

func TestRunner_ProcessTask(t *testing.T) {
	f := newFixture()
	f.addJob(t, "j", "auto")

	data, err := json.Marshal(TaskPayload{JobID: "j", Mode: model.RunModeFull})
	require.NoError(t, err)
	require.NoError(t, f.runner.ProcessTask(context.Background(), asynq.NewTask(TaskTypeJobRun, data)))

	job, err := f.jobs.Get("j")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, job.Status)

	err = f.runner.ProcessTask(context.Background(), asynq.NewTask(TaskTypeJobRun, []byte(`{"job_id":"missing"}`)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "abc...", preview("abcdef", 3))
	assert.Equal(t, "วันจ...", preview("วันจันทร์", 4))
}
