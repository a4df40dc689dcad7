// Package events publishes domain events about exams, submissions and grading.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Event types emitted by the services.
const (
	SubmissionUploaded = "submission.uploaded"
	GradingCompleted   = "grading.completed"
	ExamDeleted        = "exam.deleted"
)

// CorrelationHeader carries the request correlation id on published messages.
const CorrelationHeader = "X-Correlation-ID"

// Envelope wraps every published payload.
type Envelope struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	OccurredAt    time.Time   `json:"occurredAt"`
	CorrelationID string      `json:"correlationId,omitempty"`
	Data          interface{} `json:"data"`
}

// Publisher emits domain events. Implementations must not block request handling for long.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// CorrelationSource extracts the request correlation id from a context.
type CorrelationSource func(ctx context.Context) string

// MessagePublisher is the subset of *nats.Conn used for publishing.
type MessagePublisher interface {
	PublishMsg(msg *nats.Msg) error
}

// NATSPublisher publishes JSON envelopes to "<prefix>.<event type>".
type NATSPublisher struct {
	conn   MessagePublisher
	prefix string
	logger zerolog.Logger
	now    func() time.Time

	correlation CorrelationSource
}

// NewNATSPublisher constructs a publisher on top of an established connection.
// correlation may be nil.
func NewNATSPublisher(conn MessagePublisher, prefix string, correlation CorrelationSource, logger zerolog.Logger) *NATSPublisher {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "mathgrader"
	}
	return &NATSPublisher{
		conn:   conn,
		prefix: prefix,
		logger: logger.With().Str("component", "event_publisher").Logger(),
		now:    time.Now,

		correlation: correlation,
	}
}

// Subject returns the NATS subject used for an event type.
func (p *NATSPublisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

// Publish encodes the event and hands it to NATS.
func (p *NATSPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	envelope := Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		Data:       data,
	}
	if p.correlation != nil && ctx != nil {
		envelope.CorrelationID = p.correlation(ctx)
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	msg := nats.NewMsg(p.Subject(eventType))
	msg.Data = payload
	if envelope.CorrelationID != "" {
		msg.Header.Set(CorrelationHeader, envelope.CorrelationID)
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.Debug().Str("subject", msg.Subject).Str("event_id", envelope.ID).Msg("event published")
	return nil
}

// NoopPublisher drops events; used when no broker is configured.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, string, interface{}) error {
	return nil
}
