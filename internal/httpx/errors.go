// Package httpx holds the request parsing and error rendering shared by all
// handlers.
package httpx

import (
	"errors"
	"sort"
	"strings"

	"autocatalog-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ValidationError reports which request fields failed and why. It is
// rendered as 400 before anything is written.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid fields: " + strings.Join(keys, ", ")
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// ErrorHandler is the Fiber error handler. Every error leaves the server as
// {"error": "..."}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  ve.Error(),
			"fields": ve.Fields,
		})
	}

	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not found",
		})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	zap.L().Error("unexpected error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}
