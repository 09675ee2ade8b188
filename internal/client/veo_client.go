package client

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/autoasmr/api/internal/config"
	"github.com/autoasmr/api/internal/logger"
	"github.com/autoasmr/api/internal/model"
)

// veoClipSeconds is the clip length requested from Veo.
const veoClipSeconds = 8

// videoOperations is the slice of the genai client the Veo adapter uses.
type videoOperations interface {
	GenerateVideos(ctx context.Context, model, prompt string, cfg *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

type genaiVideoOperations struct {
	client *genai.Client
}

func (g *genaiVideoOperations) GenerateVideos(ctx context.Context, model, prompt string, cfg *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	return g.client.Models.GenerateVideos(ctx, model, prompt, nil, cfg)
}

func (g *genaiVideoOperations) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return g.client.Operations.GetVideosOperation(ctx, op, nil)
}

// VeoClient implements VideoGenerator on the Gemini API video models.
// Clips returned inline are mirrored to storage when one is configured.
type VeoClient struct {
	ops          videoOperations
	model        string
	storage      StorageClient
	pollInterval time.Duration
	pollTimeout  time.Duration
	log          *zap.SugaredLogger
	now          func() time.Time
}

// NewVeoClient creates a Veo client. storage may be nil.
func NewVeoClient(ctx context.Context, cfg *config.GeminiConfig, storage StorageClient, log *zap.SugaredLogger) (*VeoClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key not configured")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}

	return newVeoClient(&genaiVideoOperations{client: gc}, cfg, storage, log), nil
}

func newVeoClient(ops videoOperations, cfg *config.GeminiConfig, storage StorageClient, log *zap.SugaredLogger) *VeoClient {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &VeoClient{
		ops:          ops,
		model:        cfg.VideoModel,
		storage:      storage,
		pollInterval: interval,
		pollTimeout:  timeout,
		log:          log.With(logger.FieldComponent, "veo"),
		now:          time.Now,
	}
}

// Generate starts a generation and waits for it to finish.
func (c *VeoClient) Generate(ctx context.Context, prompt string) (*model.VideoResult, error) {
	op, err := c.ops.GenerateVideos(ctx, c.model, prompt, &genai.GenerateVideosConfig{
		NumberOfVideos:  1,
		AspectRatio:     "9:16",
		DurationSeconds: genai.Ptr[int32](veoClipSeconds),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to start video generation")
	}
	c.log.Infow("Video generation started", "operation", op.Name, "model", c.model)

	op, err = c.PollOperation(ctx, op, c.pollInterval, c.pollTimeout)
	if err != nil {
		return nil, err
	}

	url, err := c.resolveURL(ctx, op)
	if err != nil {
		return nil, err
	}

	return &model.VideoResult{
		VideoURL:        url,
		DurationSeconds: veoClipSeconds,
		Format:          "mp4",
		Resolution:      "1080x1920",
		AudioIncluded:   true,
		GeneratedAt:     c.now(),
	}, nil
}

// PollOperation polls a generation until it is done
func (c *VeoClient) PollOperation(ctx context.Context, op *genai.GenerateVideosOperation, interval, maxWait time.Duration) (*genai.GenerateVideosOperation, error) {
	deadline := time.Now().Add(maxWait)
	attempt := 0

	for time.Now().Before(deadline) {
		if op.Done {
			if op.Error != nil {
				return nil, errors.Newf("video generation failed: %v", op.Error["message"])
			}
			return op, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		attempt++
		next, err := c.ops.GetVideosOperation(ctx, op)
		if err != nil {
			c.log.Warnw("Poll video operation failed", "attempt", attempt, "operation", op.Name, logger.FieldError, err)
			return nil, errors.Wrap(err, "failed to poll video generation")
		}
		c.log.Debugw("Polled video operation", "attempt", attempt, "operation", op.Name, "done", next.Done)
		op = next
	}

	return nil, errors.Newf("video generation timed out after %v", maxWait)
}

func (c *VeoClient) resolveURL(ctx context.Context, op *genai.GenerateVideosOperation) (string, error) {
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		if op.Response != nil && len(op.Response.RAIMediaFilteredReasons) > 0 {
			return "", errors.Newf("video generation filtered: %s", op.Response.RAIMediaFilteredReasons[0])
		}
		return "", errors.New("video generation returned no video")
	}
	video := op.Response.GeneratedVideos[0].Video

	if len(video.VideoBytes) > 0 && c.storage != nil && c.storage.IsConfigured() {
		contentType := video.MIMEType
		if contentType == "" {
			contentType = "video/mp4"
		}
		key := fmt.Sprintf("asmr_videos/video_%s.mp4", uuid.NewString())
		url, err := c.storage.Upload(ctx, key, bytes.NewReader(video.VideoBytes), contentType)
		if err != nil {
			return "", errors.Wrap(err, "failed to mirror generated video")
		}
		return url, nil
	}

	if video.URI == "" {
		return "", errors.New("generated video has no uri and no storage is configured")
	}
	return video.URI, nil
}

func (c *VeoClient) IsConfigured() bool {
	return c.ops != nil && c.model != ""
}
