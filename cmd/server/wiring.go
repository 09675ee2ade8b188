package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/autoasmr/api/internal/client"
	"github.com/autoasmr/api/internal/config"
	"github.com/autoasmr/api/internal/logger"
	"github.com/autoasmr/api/internal/schedule"
	"github.com/autoasmr/api/internal/store"
	"github.com/autoasmr/api/internal/synth"
	"github.com/autoasmr/api/internal/worker"
)

// core is everything a pipeline run needs, independent of any transport.
type core struct {
	policy    *schedule.Policy
	jobs      *store.JobStore
	activity  *store.ActivityLog
	generator client.VideoGenerator
	publisher client.Publisher
	runner    *worker.JobRunner
}

func newPolicy(cfg *config.Config) (*schedule.Policy, error) {
	table, err := schedule.NewTable(cfg.Scheduler.Weekly)
	if err != nil {
		return nil, err
	}
	return schedule.NewPolicy(cfg.Scheduler.Timezone, table)
}

func newCore(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*core, error) {
	policy, err := newPolicy(cfg)
	if err != nil {
		return nil, err
	}

	r := synth.Locked(synth.NewRandom())

	var storage client.StorageClient
	if client.R2Configured(&cfg.R2) {
		r2, err := client.NewR2Client(ctx, &cfg.R2)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create R2 client")
		}
		storage = r2
	}

	var generator client.VideoGenerator = client.NewMockVideoGenerator(r)
	if cfg.Gemini.APIKey != "" {
		veo, err := client.NewVeoClient(ctx, &cfg.Gemini, storage, log)
		if err != nil {
			return nil, err
		}
		generator = veo
	} else {
		log.Warnw("GEMINI_API_KEY not set, using mock video generator")
	}

	var publisher client.Publisher = client.NewMockPublisher(r)
	if cfg.TikTok.AccessToken != "" {
		publisher = client.NewTikTokClient(&cfg.TikTok, log)
	} else {
		log.Warnw("TIKTOK_ACCESS_TOKEN not set, using mock publisher")
	}

	jobs := store.NewJobStore()
	activity := store.NewActivityLog(cfg.Activity.MaxEntries, policy.Now)
	runner := worker.NewJobRunner(jobs, activity,
		synth.NewPromptSynthesizer(r), synth.NewCaptionSynthesizer(r),
		generator, publisher, log).WithClock(policy.Now)

	return &core{
		policy:    policy,
		jobs:      jobs,
		activity:  activity,
		generator: generator,
		publisher: publisher,
		runner:    runner,
	}, nil
}

func newRedisClient(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) *redis.Client {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warnw("Redis not available", logger.FieldAddress, cfg.Redis.Addr, logger.FieldError, err)
	}
	return redisClient
}
