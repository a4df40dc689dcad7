package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/mathgrader-api/internal/auth"
	"github.com/noah-isme/mathgrader-api/internal/utils"
)

// Locals keys populated for authenticated requests.
const (
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
	LocalUserName  = "user_name"
	LocalUserRole  = "user_role"
)

// LoginPath is where anonymous browser requests are redirected.
const LoginPath = "/auth/login"

// DefaultProtectedPrefixes lists the route prefixes that require a session.
var DefaultProtectedPrefixes = []string{
	"/dashboard",
	"/api/exams",
	"/api/students",
	"/api/submissions",
	"/api/grade",
	"/api/dashboard",
	"/api/activity",
}

// SessionVerifier validates a session token taken from the request cookie.
type SessionVerifier interface {
	Verify(token string) (auth.SessionUser, error)
}

// SessionGate resolves the session cookie into request locals and blocks anonymous
// access to protected prefixes. An invalid cookie is treated as no session.
func SessionGate(verifier SessionVerifier, prefixes ...string) fiber.Handler {
	if len(prefixes) == 0 {
		prefixes = DefaultProtectedPrefixes
	}

	return func(c *fiber.Ctx) error {
		authenticated := false
		if token := c.Cookies(auth.CookieName); token != "" && verifier != nil {
			if user, err := verifier.Verify(token); err == nil {
				c.Locals(LocalUserID, user.ID)
				c.Locals(LocalUserEmail, user.Email)
				c.Locals(LocalUserName, user.Name)
				c.Locals(LocalUserRole, user.Role)
				authenticated = true
			}
		}

		if authenticated || !IsProtectedPath(c.Path(), prefixes) {
			return c.Next()
		}

		if strings.HasPrefix(c.Path(), "/api/") || prefersJSON(c) {
			return utils.SendError(c, fiber.StatusUnauthorized, "Not authenticated")
		}

		target := LoginPath + "?callbackUrl=" + url.QueryEscape(c.OriginalURL())
		return c.Redirect(target, fiber.StatusFound)
	}
}

// IsProtectedPath reports whether path equals one of the prefixes or sits below it.
func IsProtectedPath(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// SessionUserFromLocals rebuilds the session user stored by SessionGate.
func SessionUserFromLocals(c *fiber.Ctx) (auth.SessionUser, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	if !ok || id == 0 {
		return auth.SessionUser{}, false
	}

	user := auth.SessionUser{ID: id}
	user.Email, _ = c.Locals(LocalUserEmail).(string)
	user.Name, _ = c.Locals(LocalUserName).(string)
	user.Role, _ = c.Locals(LocalUserRole).(string)
	return user, true
}

func prefersJSON(c *fiber.Ctx) bool {
	accept := strings.ToLower(c.Get(fiber.HeaderAccept))
	if strings.Contains(accept, fiber.MIMEApplicationJSON) && !strings.Contains(accept, fiber.MIMETextHTML) {
		return true
	}
	return strings.EqualFold(c.Get(fiber.HeaderXRequestedWith), "XMLHttpRequest")
}
