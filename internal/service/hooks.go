package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/events"
)

// DashboardInvalidator drops cached dashboard statistics for a teacher.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, ownerID uint)
}

// MutationHooks bundles the side effects that follow a successful write. Every
// field is optional.
type MutationHooks struct {
	Activity  ActivityRecorder
	Events    events.Publisher
	Dashboard DashboardInvalidator
}

type mutation struct {
	entry     ActivityEntry
	ownerID   uint
	eventType string
	eventData interface{}
}

// after runs the hooks; failures are logged and never surface to the caller.
func (h MutationHooks) after(ctx context.Context, logger zerolog.Logger, m mutation) {
	recordActivity(ctx, h.Activity, logger, m.entry)

	if h.Dashboard != nil && m.ownerID != 0 {
		h.Dashboard.Invalidate(ctx, m.ownerID)
	}

	if h.Events != nil && m.eventType != "" {
		if err := h.Events.Publish(ctx, m.eventType, m.eventData); err != nil {
			logger.Warn().Err(err).Str("event", m.eventType).Msg("failed to publish event")
		}
	}
}
