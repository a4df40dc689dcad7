package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/service"
	"github.com/noah-isme/mathgrader-api/internal/utils"
)

// StudentHandler lists the students on the caller's rosters.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student endpoints.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	students, err := h.service.List(withRequestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to fetch students")
	}
	return utils.SendSuccess(c, utils.Payload{"students": students})
}
