package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Queue.Backend)
	assert.Equal(t, 10, cfg.Worker.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.Worker.BatchStagger)
	assert.Equal(t, "Asia/Bangkok", cfg.Scheduler.Timezone)
	assert.Equal(t, 60*time.Second, cfg.Scheduler.TickInterval)
	assert.Equal(t, 1000, cfg.Activity.MaxEntries)
	assert.Len(t, cfg.Scheduler.Weekly, 7)
	assert.Equal(t, "19:30", cfg.Scheduler.Weekly["monday"].Time)
	assert.Equal(t, "veo-3.0-generate-preview", cfg.Gemini.VideoModel)
	assert.Equal(t, 6, cfg.TikTok.RequestsPerMinute)
	assert.Equal(t, 5*time.Second, cfg.TikTok.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.TikTok.PollTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("QUEUE_BACKEND", "REDIS")
	t.Setenv("WORKER_CONCURRENCY", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Queue.Backend)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
}

func TestLoad_SecretFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	secretPath := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(secretPath, []byte("  tt-secret \n"), 0o600))
	t.Setenv("TIKTOK_ACCESS_TOKEN", "")
	t.Setenv("TIKTOK_ACCESS_TOKEN_FILE", secretPath)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tt-secret", cfg.TikTok.AccessToken)
}

func TestLoad_WeeklyOverrideFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "scheduler:\n  weekly:\n    monday:\n      time: \"08:15\"\n      range: \"08:00-09:00\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "08:15", cfg.Scheduler.Weekly["monday"].Time)
	assert.Equal(t, "08:00-09:00", cfg.Scheduler.Weekly["monday"].Range)
	assert.Equal(t, "16:30", cfg.Scheduler.Weekly["tuesday"].Time)
}
