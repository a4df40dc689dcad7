package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/mathgrader-api/internal/utils"
)

// RequireRole admits sessions whose role is one of roles. Requests without a session
// get 401, other roles get 403.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		if normalized := normalizeRole(role); normalized != "" {
			allowed[normalized] = true
		}
	}

	return func(c *fiber.Ctx) error {
		user, ok := SessionUserFromLocals(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "Not authenticated")
		}
		if !allowed[normalizeRole(user.Role)] {
			return utils.SendError(c, fiber.StatusForbidden, "Unauthorized")
		}
		return c.Next()
	}
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
