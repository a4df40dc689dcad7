package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"github.com/noah-isme/mathgrader-api/internal/events"
)

type correlationKey struct{}

const (
	localCorrelationID     = "correlation_id"
	maxCorrelationIDLength = 128
)

// CorrelationID tags every request with an id. A usable X-Correlation-ID or
// X-Request-ID header is reused, otherwise a UUID is generated. The id is echoed in the
// response and travels with the request context into logs and grading events.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := incomingCorrelationID(c)
		c.Locals(localCorrelationID, id)
		c.Set(events.CorrelationHeader, id)
		c.SetUserContext(ContextWithCorrelation(c.UserContext(), id))
		return c.Next()
	}
}

func incomingCorrelationID(c *fiber.Ctx) string {
	for _, header := range []string{events.CorrelationHeader, "X-Request-ID"} {
		id := strings.TrimSpace(c.Get(header))
		if id != "" && len(id) <= maxCorrelationIDLength {
			return utils.CopyString(id)
		}
	}
	return uuid.NewString()
}

// CorrelationIDFromContext returns the id stored by ContextWithCorrelation, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// GetCorrelationID returns the id bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(localCorrelationID).(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}

// ContextWithCorrelation attaches a correlation id to ctx. Blank ids leave ctx untouched.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, correlationID)
}
