package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/middleware"
	"github.com/noah-isme/mathgrader-api/internal/service"
	"github.com/noah-isme/mathgrader-api/internal/utils"
)

// SessionCookies writes and clears the session cookie.
type SessionCookies interface {
	SetCookie(c *fiber.Ctx, token string)
	ClearCookie(c *fiber.Ctx)
}

// AuthHandler exposes registration, login, logout and the current session.
type AuthHandler struct {
	service   service.AuthService
	cookies   SessionCookies
	rateLimit int
	logger    zerolog.Logger
}

// NewAuthHandler constructs the handler. rateLimit caps login and register
// attempts per client and minute.
func NewAuthHandler(service service.AuthService, cookies SessionCookies, rateLimit int, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		cookies:   cookies,
		rateLimit: rateLimit,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	limit := middleware.RateLimit("auth", h.rateLimit, time.Minute)
	router.Post("/register", limit, h.register)
	router.Post("/login", limit, h.login)
	router.Post("/logout", h.logout)
	router.Get("/me", middleware.WithAuth(h.me, middleware.AuthOptions{Role: middleware.AuthRoleAny}))
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing required fields")
	}

	user, token, err := h.service.Register(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to register user")
	}

	h.cookies.SetCookie(c, token)
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, utils.Payload{"user": user})
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing required fields")
	}

	user, token, err := h.service.Login(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to log in")
	}

	h.cookies.SetCookie(c, token)
	return utils.SendSuccess(c, utils.Payload{"user": user})
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	h.cookies.ClearCookie(c)
	return utils.SendMessage(c, "Logged out successfully")
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.CurrentUser(withRequestContext(c), userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.cookies.ClearCookie(c)
			return utils.SendError(c, fiber.StatusUnauthorized, "Not authenticated")
		}
		return respondError(c, h.logger, err, "Failed to load user")
	}
	return utils.SendSuccess(c, utils.Payload{"user": user})
}
