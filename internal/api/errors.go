package api

import (
	"errors"
	"log/slog"

	"portal-service/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type MessageResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func respondMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(MessageResponse{Message: message})
}

// respondServiceError maps service errors to status codes. Unknown errors are logged and become 500.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return respondMessage(c, fiber.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrDuplicateEmail):
		return respondMessage(c, fiber.StatusConflict, "Email already exists")
	case errors.Is(err, service.ErrNotFound):
		return respondMessage(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrSelfDelete):
		return respondMessage(c, fiber.StatusForbidden, "You cannot delete your own account")
	case errors.Is(err, service.ErrMissingPhoto):
		return respondMessage(c, fiber.StatusBadRequest, "Photo is required")
	case errors.Is(err, service.ErrPasswordTooLong):
		return respondMessage(c, fiber.StatusBadRequest, "Password must be at most 72 bytes")
	case errors.Is(err, service.ErrAdminCorreoLocked):
		return respondMessage(c, fiber.StatusForbidden, "The admin account email cannot be changed")
	}

	slog.ErrorContext(c.UserContext(), "Request failed",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)

	return respondMessage(c, fiber.StatusInternalServerError, "Internal server error")
}

// respondValidationError reports missing required fields separately from malformed ones.
func respondValidationError(c *fiber.Ctx, err error, missingMessage string) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			if fe.Tag() == "required" {
				return respondMessage(c, fiber.StatusBadRequest, missingMessage)
			}
		}
	}

	return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: "Invalid input", Details: err.Error()})
}

// ErrorHandler renders errors that escape a handler, including Fiber's own 404 and 405, as {message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return respondMessage(c, fiberErr.Code, fiberErr.Message)
	}

	return respondServiceError(c, err)
}
