package middleware

import (
	"ecg-academy/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionIDHeader    = "X-Session-ID"
	ValidatedFormatKey = "validated_format"
	ValidatedSessionID = "validated_session_id"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateExportFormat validates ?format= and stores it, defaulting to json.
func (vm *ValidationMiddleware) ValidateExportFormat() fiber.Handler {
	return func(c *fiber.Ctx) error {
		format := c.Query("format")
		if errors := vm.validator.ValidateExportFormat(format); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}
		if format == "" {
			format = "json"
		}
		c.Locals(ValidatedFormatKey, format)
		return c.Next()
	}
}

// RequireSessionID validates the session header used for login dedupe.
func (vm *ValidationMiddleware) RequireSessionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Get(SessionIDHeader)
		if errors := vm.validator.ValidateSessionID(sessionID); len(errors) > 0 {
			return errors
		}
		c.Locals(ValidatedSessionID, sessionID)
		return c.Next()
	}
}
