package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/autoasmr/api/internal/config"
	"github.com/autoasmr/api/internal/handler"
	"github.com/autoasmr/api/internal/logger"
	"github.com/autoasmr/api/internal/middleware"
	"github.com/autoasmr/api/internal/service"
	ws "github.com/autoasmr/api/internal/websocket"
	"github.com/autoasmr/api/internal/worker"
	"github.com/autoasmr/api/pkg/response"
)

func newServeCmd() *cobra.Command {
	var daily bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the dispatcher and the daily scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			return serve(cmd.Context(), cfg, log, daily || cfg.Scheduler.AutoEnable)
		},
	}
	cmd.Flags().BoolVar(&daily, "daily", false, "enable daily scheduling at start")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, daily bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := newCore(ctx, cfg, log)
	if err != nil {
		return err
	}

	redisClient := newRedisClient(ctx, cfg, log)
	defer redisClient.Close()

	// WebSocket hub fed by every activity append
	hub := ws.NewHub(log)
	go hub.Run(ctx)
	deps.activity.Subscribe(hub.BroadcastActivity)

	// Dispatcher
	var dispatcher worker.Dispatcher
	var pool *worker.PoolDispatcher
	switch cfg.Queue.Backend {
	case "redis":
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()
		dispatcher = worker.NewAsynqDispatcher(asynqClient)
		go startWorkerServer(ctx, cfg, deps.runner, log)
	default:
		pool = worker.NewPoolDispatcher(deps.runner, cfg.Worker.Concurrency, log)
		dispatcher = pool
	}
	log.Infow("Dispatcher ready", "backend", cfg.Queue.Backend, "concurrency", cfg.Worker.Concurrency)

	scheduler := worker.NewScheduler(deps.policy, deps.jobs, deps.activity, deps.runner, cfg.Scheduler.TickInterval, log)
	scheduler.Start(ctx)
	defer scheduler.Stop()
	if daily {
		if err := scheduler.Enable(); err != nil {
			return err
		}
	}

	svc := service.NewJobService(deps.jobs, deps.activity, deps.policy, scheduler, dispatcher, cfg.Worker.BatchStagger, log)
	validate := validator.New()
	rateLimiter := middleware.NewRateLimiter(redisClient, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1024 * 1024,
	})

	app.Use(recover.New())
	format := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if logger.ParseLevel(cfg.Server.LogLevel) <= zap.DebugLevel {
		format = "[${time}] ${ip} ${status} - ${latency} ${method} ${path}?${queryParams} ${bytesReceived}B/${bytesSent}B\n"
	}
	app.Use(fiberlogger.New(fiberlogger.Config{Format: format}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	handler.Register(app,
		handler.NewJobHandler(svc, validate),
		handler.NewScheduleHandler(svc),
		handler.NewHealthHandler(deps.generator, deps.publisher, redisClient, deps.policy),
		rateLimiter.CreateLimit(cfg.RateLimit.CreatePerHour),
	)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/jobs/:jobId", websocket.New(func(conn *websocket.Conn) {
		hub.HandleConnection(conn, conn.Params("jobId"))
	}))

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Infow("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorw("Server shutdown error", logger.FieldError, err)
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Infow("Server starting", logger.FieldAddress, addr, "daily", daily)
	if err := app.Listen(addr); err != nil {
		return err
	}

	if pool != nil {
		drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := pool.Shutdown(drainCtx); err != nil {
			log.Warnw("In-flight runs abandoned at shutdown", logger.FieldError, err)
		}
	}
	return nil
}

func startWorkerServer(ctx context.Context, cfg *config.Config, runner *worker.JobRunner, log *zap.SugaredLogger) {
	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				worker.QueueJobs: 1,
			},
			Logger:   log.With(logger.FieldComponent, "asynq"),
			LogLevel: asynqLogLevel(cfg.Server.LogLevel),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(worker.TaskTypeJobRun, runner.ProcessTask)

	if err := srv.Start(mux); err != nil {
		log.Errorw("Asynq worker error", logger.FieldError, err)
		return
	}
	<-ctx.Done()
	srv.Shutdown()
}

func asynqLogLevel(level string) asynq.LogLevel {
	switch logger.ParseLevel(level) {
	case zap.DebugLevel:
		return asynq.DebugLevel
	case zap.WarnLevel:
		return asynq.WarnLevel
	case zap.ErrorLevel:
		return asynq.ErrorLevel
	default:
		return asynq.InfoLevel
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, response.CodeServiceError, message, nil)
}
