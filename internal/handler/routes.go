package handler

import "github.com/gofiber/fiber/v2"

// Register mounts the HTTP API. createLimit guards the job-creating routes.
func Register(app *fiber.App, jobs *JobHandler, schedules *ScheduleHandler, health *HealthHandler, createLimit fiber.Handler) {
	app.Get("/", health.Root)
	app.Get("/health", health.Health)

	api := app.Group("/api")

	j := api.Group("/jobs")
	j.Post("/auto", createLimit, jobs.CreateAuto)
	j.Post("/batch", createLimit, jobs.CreateBatch)
	j.Post("/", createLimit, jobs.Create)
	j.Get("/", jobs.List)
	j.Get("/:jobId", jobs.Detail)
	j.Get("/:jobId/status", jobs.Status)
	j.Post("/:jobId/run", jobs.Run)
	j.Post("/:jobId/retry-publish", jobs.RetryPublish)
	j.Delete("/:jobId", jobs.Delete)

	api.Get("/logs", jobs.Logs)

	s := api.Group("/schedule")
	s.Post("/enable", schedules.Enable)
	s.Post("/disable", schedules.Disable)
	s.Get("/status", schedules.Status)
}
