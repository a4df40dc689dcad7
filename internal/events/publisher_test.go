package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	messages []*nats.Msg
	err      error
}

func (r *recordingConn) PublishMsg(msg *nats.Msg) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, msg)
	return nil
}

func TestNATSPublisherWritesEnvelope(t *testing.T) {
	conn := &recordingConn{}
	type ctxKey struct{}
	source := func(ctx context.Context) string {
		id, _ := ctx.Value(ctxKey{}).(string)
		return id
	}
	publisher := NewNATSPublisher(conn, "grader.", source, zerolog.Nop())
	fixed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	ctx := context.WithValue(context.Background(), ctxKey{}, "corr-1")
	require.NoError(t, publisher.Publish(ctx, GradingCompleted, map[string]interface{}{"submissionId": 3}))

	require.Len(t, conn.messages, 1)
	msg := conn.messages[0]
	require.Equal(t, "grader.grading.completed", msg.Subject)
	require.Equal(t, "corr-1", msg.Header.Get(CorrelationHeader))

	var envelope struct {
		ID            string                 `json:"id"`
		Type          string                 `json:"type"`
		OccurredAt    time.Time              `json:"occurredAt"`
		CorrelationID string                 `json:"correlationId"`
		Data          map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &envelope))
	require.NotEmpty(t, envelope.ID)
	require.Equal(t, GradingCompleted, envelope.Type)
	require.True(t, fixed.Equal(envelope.OccurredAt))
	require.Equal(t, "corr-1", envelope.CorrelationID)
	require.Equal(t, float64(3), envelope.Data["submissionId"])
}

func TestNATSPublisherWrapsErrors(t *testing.T) {
	conn := &recordingConn{err: nats.ErrConnectionClosed}
	publisher := NewNATSPublisher(conn, "", nil, zerolog.Nop())

	err := publisher.Publish(context.Background(), SubmissionUploaded, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, nats.ErrConnectionClosed))
	require.Equal(t, "mathgrader.submission.uploaded", publisher.Subject(SubmissionUploaded))
}

func TestNoopPublisher(t *testing.T) {
	var publisher Publisher = NoopPublisher{}
	require.NoError(t, publisher.Publish(context.Background(), ExamDeleted, nil))
}
