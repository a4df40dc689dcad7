package handler

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/service"
	"github.com/noah-isme/mathgrader-api/internal/utils"
)

// SubmissionHandler exposes answer sheet submission routes.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs a submission handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission routes.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Get("/:id/analysis", h.analysis)
}

// create accepts JSON or a multipart form with an "image" file part.
func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	var (
		payload dto.SubmissionCreateRequest
		file    *multipart.FileHeader
	)

	if isMultipart(c) {
		payload.ExamID = parseUintValue(c.FormValue("examId"))
		payload.StudentID = parseUintValue(c.FormValue("studentId"))
		payload.ImageURL = c.FormValue("imageUrl")
		if header, err := c.FormFile("image"); err == nil {
			file = header
		}
	} else if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing required fields")
	}

	submission, err := h.service.Create(withRequestContext(c), actorFromContext(c), payload, file)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to upload submission")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, utils.Payload{"submission": submission})
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing submission ID")
	}

	submission, err := h.service.Get(withRequestContext(c), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to fetch submission")
	}
	return utils.SendSuccess(c, utils.Payload{"submission": submission})
}

func (h *SubmissionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing submission ID")
	}

	var payload dto.SubmissionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	submission, err := h.service.Update(withRequestContext(c), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update submission")
	}
	return utils.SendSuccess(c, utils.Payload{"submission": submission})
}

func (h *SubmissionHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing submission ID")
	}

	if err := h.service.Delete(withRequestContext(c), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete submission")
	}
	return utils.SendMessage(c, "Submission deleted successfully")
}

func (h *SubmissionHandler) analysis(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing submission ID")
	}

	analysis, err := h.service.Analysis(withRequestContext(c), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to analyse submission")
	}
	return utils.SendSuccess(c, utils.Payload{"analysis": analysis})
}
