package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/models"
)

func TestActivityServiceMasksSensitiveMetadata(t *testing.T) {
	env := newTestEnv(t)
	svc := NewActivityService(env.activity, zerolog.Nop())
	actor := env.teacher(t, "owner@example.com")

	entry, err := svc.Record(context.Background(), ActivityEntry{
		Actor:      actor,
		Action:     " Exam.Created ",
		EntityType: "Exam",
		Metadata:   map[string]interface{}{"title": "Quiz", "email": "owner@example.com", "resetToken": "abc"},
	})
	require.NoError(t, err)
	require.Equal(t, models.ActivityExamCreated, entry.Action)
	require.Equal(t, "exam", entry.EntityType)
	require.Equal(t, "Quiz", entry.Metadata["title"])
	require.Equal(t, "***", entry.Metadata["email"])
	require.Equal(t, "***", entry.Metadata["resetToken"])

	_, err = svc.Record(context.Background(), ActivityEntry{Actor: actor, EntityType: "exam"})
	require.Error(t, err)
}

func TestActivityServiceListIsScopedAndPaginated(t *testing.T) {
	env := newTestEnv(t)
	svc := NewActivityService(env.activity, zerolog.Nop())
	owner := env.teacher(t, "owner@example.com")
	other := env.teacher(t, "other@example.com")

	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), ActivityEntry{Actor: owner, Action: models.ActivityExamCreated, EntityType: "exam"})
		require.NoError(t, err)
	}
	_, err := svc.Record(context.Background(), ActivityEntry{Actor: owner, Action: models.ActivityExamDeleted, EntityType: "exam"})
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), ActivityEntry{Actor: other, Action: models.ActivityExamCreated, EntityType: "exam"})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), owner, dto.ActivityListRequest{Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, int64(4), page.Pagination.TotalItems)
	require.Equal(t, 2, page.Pagination.TotalPages)

	created, err := svc.List(context.Background(), owner, dto.ActivityListRequest{Action: "EXAM.CREATED"})
	require.NoError(t, err)
	require.Len(t, created.Items, 3)
	require.Equal(t, 20, created.Pagination.PageSize)

	recent, err := svc.Recent(context.Background(), other, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}
