package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/service"
	"github.com/noah-isme/mathgrader-api/internal/utils"
)

// GradingHandler triggers grading of a submission.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches the grading endpoint.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Post("", h.grade)
}

func (h *GradingHandler) grade(c *fiber.Ctx) error {
	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil || payload.SubmissionID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing submission ID")
	}

	result, err := h.service.Grade(withRequestContext(c), actorFromContext(c), payload.SubmissionID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to grade assignment")
	}
	return utils.SendSuccess(c, utils.Payload{"gradingResult": result})
}
