package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/service"
	"github.com/noah-isme/mathgrader-api/internal/utils"
)

// DashboardHandler exposes the teacher dashboard statistics.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler creates a new handler instance.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoint.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("", h.getDashboard)
}

func (h *DashboardHandler) getDashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.GetDashboard(withRequestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load dashboard")
	}
	return utils.SendSuccess(c, utils.Payload{"dashboard": dashboard})
}
