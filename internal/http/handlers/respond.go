package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"pustaka/internal/domain"
	applog "pustaka/internal/log"
)

// envelope is the wire format of every response.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func respond(c *fiber.Ctx, status int, success bool, data any, message string) error {
	return c.Status(status).JSON(envelope{
		Success:   success,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	})
}

func ok(c *fiber.Ctx, data any, message string) error {
	return respond(c, fiber.StatusOK, true, data, message)
}

func created(c *fiber.Ctx, data any, message string) error {
	return respond(c, fiber.StatusCreated, true, data, message)
}

// fail maps the error taxonomy to HTTP status codes. Anything outside the
// taxonomy (including transaction failures) is reported as an opaque 500.
func fail(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrLimitExceeded),
		errors.Is(err, domain.ErrOutstandingDebt):
		applog.Warn(c, action+".rejected", map[string]any{"reason": domain.Message(err)})
		return respond(c, fiber.StatusBadRequest, false, nil, domain.Message(err))
	case errors.Is(err, domain.ErrNotFound):
		return respond(c, fiber.StatusNotFound, false, nil, domain.Message(err))
	case errors.Is(err, domain.ErrConflict):
		return respond(c, fiber.StatusConflict, false, nil, domain.Message(err))
	default:
		applog.Error(c, action+".fail", err, nil)
		return respond(c, fiber.StatusInternalServerError, false, nil, "Something went wrong. Please try again.")
	}
}
