package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/utils"
)

const internalErrorMessage = "Internal server error"

// ErrorHandler renders errors that escape handlers, including recovered panics, in the
// JSON error envelope. Server errors are logged and answered with a generic message.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	logger = logger.With().Str("component", "error_handler").Logger()

	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := internalErrorMessage

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			if status < fiber.StatusInternalServerError {
				message = fiberErr.Message
			}
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error().
				Err(err).
				Str("correlation_id", GetCorrelationID(c)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("unhandled request error")
		}

		return utils.SendError(c, status, message)
	}
}
