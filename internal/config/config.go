package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Queue     QueueConfig
	Worker    WorkerConfig
	Scheduler SchedulerConfig
	Activity  ActivityConfig
	RateLimit RateLimitConfig
	Gemini    GeminiConfig
	TikTok    TikTokConfig
	R2        R2Config
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type QueueConfig struct {
	Backend string // "memory" or "redis"
}

type WorkerConfig struct {
	Concurrency  int // 0 means unbounded
	BatchStagger time.Duration
}

type SchedulerConfig struct {
	Timezone     string
	TickInterval time.Duration
	AutoEnable   bool
	Weekly       map[string]SlotConfig
}

type SlotConfig struct {
	Time  string `mapstructure:"time"`
	Range string `mapstructure:"range"`
	Label string `mapstructure:"label"`
}

type ActivityConfig struct {
	MaxEntries int
}

type RateLimitConfig struct {
	CreatePerHour int
}

type GeminiConfig struct {
	APIKey       string
	VideoModel   string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

type TikTokConfig struct {
	AccessToken       string
	BaseURL           string
	Username          string
	RequestsPerMinute int
	PollInterval      time.Duration
	PollTimeout       time.Duration
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

// DefaultWeekly is the one-clip-per-day publish table, in the scheduler's time zone.
func DefaultWeekly() map[string]SlotConfig {
	return map[string]SlotConfig{
		"monday":    {Time: "19:30", Range: "19:00-20:00", Label: "วันจันทร์"},
		"tuesday":   {Time: "16:30", Range: "16:00-17:00", Label: "วันอังคาร"},
		"wednesday": {Time: "17:30", Range: "17:00-18:00", Label: "วันพุธ"},
		"thursday":  {Time: "17:30", Range: "17:00-18:00", Label: "วันพฤหัสบดี"},
		"friday":    {Time: "16:30", Range: "16:00-17:00", Label: "วันศุกร์"},
		"saturday":  {Time: "17:30", Range: "17:00-18:00", Label: "วันเสาร์"},
		"sunday":    {Time: "20:30", Range: "20:00-21:00", Label: "วันอาทิตย์"},
	}
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("GEMINI_API_KEY")
	readSecret("TIKTOK_ACCESS_TOKEN")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables
	v.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.env", "SERVER_ENV")
	_ = v.BindEnv("server.log_level", "LOG_LEVEL")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("queue.backend", "QUEUE_BACKEND")
	_ = v.BindEnv("worker.concurrency", "WORKER_CONCURRENCY")
	_ = v.BindEnv("worker.batch_stagger", "WORKER_BATCH_STAGGER")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")
	_ = v.BindEnv("scheduler.tick_interval", "SCHEDULER_TICK_INTERVAL")
	_ = v.BindEnv("scheduler.auto_enable", "SCHEDULER_AUTO_ENABLE")
	_ = v.BindEnv("activity.max_entries", "ACTIVITY_MAX_ENTRIES")
	_ = v.BindEnv("ratelimit.create_per_hour", "RATELIMIT_CREATE_PER_HOUR")
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("gemini.video_model", "GEMINI_VIDEO_MODEL")
	_ = v.BindEnv("tiktok.access_token", "TIKTOK_ACCESS_TOKEN")
	_ = v.BindEnv("tiktok.base_url", "TIKTOK_BASE_URL")
	_ = v.BindEnv("tiktok.username", "TIKTOK_USERNAME")
	_ = v.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = v.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = v.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = v.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = v.BindEnv("r2.public_url", "R2_PUBLIC_URL")

	// Defaults
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("queue.backend", "memory")
	v.SetDefault("worker.concurrency", 10)
	v.SetDefault("worker.batch_stagger", 2*time.Second)
	v.SetDefault("scheduler.timezone", "Asia/Bangkok")
	v.SetDefault("scheduler.tick_interval", 60*time.Second)
	v.SetDefault("scheduler.auto_enable", false)
	v.SetDefault("activity.max_entries", 1000)
	v.SetDefault("ratelimit.create_per_hour", 30)

	// Gemini defaults
	v.SetDefault("gemini.video_model", "veo-3.0-generate-preview")
	v.SetDefault("gemini.poll_interval", 10*time.Second)
	v.SetDefault("gemini.poll_timeout", 10*time.Minute)

	// TikTok defaults
	v.SetDefault("tiktok.base_url", "https://open.tiktokapis.com")
	v.SetDefault("tiktok.username", "autoasmr")
	v.SetDefault("tiktok.requests_per_minute", 6)
	v.SetDefault("tiktok.poll_interval", 5*time.Second)
	v.SetDefault("tiktok.poll_timeout", 5*time.Minute)

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	weekly := DefaultWeekly()
	if v.IsSet("scheduler.weekly") {
		configured := map[string]SlotConfig{}
		if err := v.UnmarshalKey("scheduler.weekly", &configured); err != nil {
			return nil, err
		}
		for day, slot := range configured {
			day = strings.ToLower(day)
			if slot.Label == "" {
				slot.Label = weekly[day].Label
			}
			weekly[day] = slot
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetString("server.port"),
			Env:      v.GetString("server.env"),
			LogLevel: v.GetString("server.log_level"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Queue: QueueConfig{
			Backend: strings.ToLower(v.GetString("queue.backend")),
		},
		Worker: WorkerConfig{
			Concurrency:  v.GetInt("worker.concurrency"),
			BatchStagger: v.GetDuration("worker.batch_stagger"),
		},
		Scheduler: SchedulerConfig{
			Timezone:     v.GetString("scheduler.timezone"),
			TickInterval: v.GetDuration("scheduler.tick_interval"),
			AutoEnable:   v.GetBool("scheduler.auto_enable"),
			Weekly:       weekly,
		},
		Activity: ActivityConfig{
			MaxEntries: v.GetInt("activity.max_entries"),
		},
		RateLimit: RateLimitConfig{
			CreatePerHour: v.GetInt("ratelimit.create_per_hour"),
		},
		Gemini: GeminiConfig{
			APIKey:       v.GetString("gemini.api_key"),
			VideoModel:   v.GetString("gemini.video_model"),
			PollInterval: v.GetDuration("gemini.poll_interval"),
			PollTimeout:  v.GetDuration("gemini.poll_timeout"),
		},
		TikTok: TikTokConfig{
			AccessToken:       v.GetString("tiktok.access_token"),
			BaseURL:           v.GetString("tiktok.base_url"),
			Username:          v.GetString("tiktok.username"),
			RequestsPerMinute: v.GetInt("tiktok.requests_per_minute"),
			PollInterval:      v.GetDuration("tiktok.poll_interval"),
			PollTimeout:       v.GetDuration("tiktok.poll_timeout"),
		},
		R2: R2Config{
			AccountID:       v.GetString("r2.account_id"),
			AccessKeyID:     v.GetString("r2.access_key_id"),
			SecretAccessKey: v.GetString("r2.secret_access_key"),
			BucketName:      v.GetString("r2.bucket_name"),
			PublicURL:       v.GetString("r2.public_url"),
		},
	}

	return cfg, nil
}
