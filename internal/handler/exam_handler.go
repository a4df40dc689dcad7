package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/service"
	"github.com/noah-isme/mathgrader-api/internal/utils"
)

// ExamHandler wires exam HTTP routes.
type ExamHandler struct {
	service service.ExamService
	logger  zerolog.Logger
}

// NewExamHandler constructs the handler.
func NewExamHandler(service service.ExamService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register attaches exam endpoints to the router group.
func (h *ExamHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ExamHandler) list(c *fiber.Ctx) error {
	exams, err := h.service.List(withRequestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to fetch exams")
	}
	return utils.SendSuccess(c, utils.Payload{"exams": exams})
}

func (h *ExamHandler) create(c *fiber.Ctx) error {
	var payload dto.ExamCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing required fields")
	}

	exam, err := h.service.Create(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create exam")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, utils.Payload{"exam": exam})
}

func (h *ExamHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "Exam not found")
	}

	exam, err := h.service.Get(withRequestContext(c), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to fetch exam")
	}
	return utils.SendSuccess(c, utils.Payload{"exam": exam})
}

func (h *ExamHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "Exam not found")
	}

	var payload dto.ExamUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing required fields")
	}

	exam, err := h.service.Update(withRequestContext(c), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update exam")
	}
	return utils.SendSuccess(c, utils.Payload{"exam": exam})
}

func (h *ExamHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "Exam not found")
	}

	if err := h.service.Delete(withRequestContext(c), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete exam")
	}
	return utils.SendMessage(c, "Exam deleted successfully")
}
