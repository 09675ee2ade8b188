package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/autoasmr/api/internal/service"
	"github.com/autoasmr/api/pkg/response"
)

type ScheduleHandler struct {
	service *service.JobService
}

func NewScheduleHandler(svc *service.JobService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Enable handles POST /api/schedule/enable
func (h *ScheduleHandler) Enable(c *fiber.Ctx) error {
	result, err := h.service.EnableDaily()
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Disable handles POST /api/schedule/disable
func (h *ScheduleHandler) Disable(c *fiber.Ctx) error {
	return response.OK(c, h.service.DisableDaily())
}

// Status handles GET /api/schedule/status
func (h *ScheduleHandler) Status(c *fiber.Ctx) error {
	return response.OK(c, h.service.ScheduleStatus())
}
