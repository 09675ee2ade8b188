package handler

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/autoasmr/api/internal/service"
	"github.com/autoasmr/api/internal/store"
	"github.com/autoasmr/api/pkg/response"
)

func formatValidationErrors(err error) interface{} {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string)
		for _, e := range validationErrors {
			fields[e.Field()] = e.Tag()
		}
		return fields
	}
	return nil
}

// serviceError maps service failures onto the response envelope.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrJobNotFound):
		return response.NotFound(c, "Job not found")
	case errors.Is(err, service.ErrInvalidState):
		return response.InvalidState(c, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		return response.ValidationError(c, err.Error(), nil)
	default:
		return response.ServiceError(c, err.Error())
	}
}
