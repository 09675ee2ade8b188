package handler

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/autoasmr/api/internal/model"
	"github.com/autoasmr/api/internal/service"
	"github.com/autoasmr/api/pkg/response"
)

type JobHandler struct {
	service   *service.JobService
	validator *validator.Validate
}

func NewJobHandler(svc *service.JobService, v *validator.Validate) *JobHandler {
	return &JobHandler{
		service:   svc,
		validator: v,
	}
}

// CreateAuto handles POST /api/jobs/auto
func (h *JobHandler) CreateAuto(c *fiber.Ctx) error {
	result, err := h.service.CreateAutoJob(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return response.Accepted(c, result)
}

// CreateBatch handles POST /api/jobs/batch
func (h *JobHandler) CreateBatch(c *fiber.Ctx) error {
	var req model.CreateBatchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.ValidationError(c, "Invalid request body", nil)
		}
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.CreateBatch(c.UserContext(), req.Count)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Accepted(c, result)
}

// Create handles POST /api/jobs
func (h *JobHandler) Create(c *fiber.Ctx) error {
	var req model.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.CreateJob(&req)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Created(c, result)
}

// List handles GET /api/jobs
func (h *JobHandler) List(c *fiber.Ctx) error {
	return response.OK(c, h.service.ListJobs())
}

// Detail handles GET /api/jobs/:jobId
func (h *JobHandler) Detail(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.JobDetail(jobID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Status handles GET /api/jobs/:jobId/status
func (h *JobHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetStatus(jobID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Run handles POST /api/jobs/:jobId/run
func (h *JobHandler) Run(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.RunJob(c.UserContext(), jobID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Accepted(c, result)
}

// RetryPublish handles POST /api/jobs/:jobId/retry-publish
func (h *JobHandler) RetryPublish(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.RetryPublish(c.UserContext(), jobID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Accepted(c, result)
}

// Delete handles DELETE /api/jobs/:jobId
func (h *JobHandler) Delete(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.DeleteJob(jobID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Logs handles GET /api/logs?limit=N
func (h *JobHandler) Logs(c *fiber.Ctx) error {
	var limit *int
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return response.ValidationError(c, "limit must be an integer", nil)
		}
		limit = &n
	}

	result, err := h.service.ListLogs(limit)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}
