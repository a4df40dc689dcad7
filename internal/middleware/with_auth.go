package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/mathgrader-api/internal/utils"
)

// Auth role constants used by WithAuth helper.
const (
	AuthRoleAny     = "any"
	AuthRoleTeacher = "teacher"
	AuthRoleAdmin   = "admin"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role string
}

// WithAuth wraps a single handler with a session requirement, for routes that sit
// outside the protected prefixes (for example /api/auth/me).
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := normalizeRole(opts.Role)
	if role == "" {
		role = AuthRoleAny
	}

	return func(c *fiber.Ctx) error {
		user, ok := SessionUserFromLocals(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "Not authenticated")
		}

		if !roleSatisfies(normalizeRole(user.Role), role) {
			return utils.SendError(c, fiber.StatusForbidden, "Unauthorized")
		}

		return handler(c)
	}
}

// roleSatisfies reports whether current may use a route requiring required.
// Admins may act on teacher routes.
func roleSatisfies(current, required string) bool {
	switch required {
	case AuthRoleAny:
		return true
	case AuthRoleTeacher:
		return current == AuthRoleTeacher || current == AuthRoleAdmin
	default:
		return current == required
	}
}
