package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mathgrader-api/internal/models"
)

func TestDashboardServiceAggregationAndCaching(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	env := newTestEnv(t)
	ctx := context.Background()

	activity := NewActivityService(env.activity, zerolog.Nop())
	svc := NewDashboardService(env.exams, env.students, env.submissions, env.results, activity, redisClient, time.Minute, zerolog.Nop())

	owner := env.teacher(t, "owner@example.com")
	other := env.teacher(t, "other@example.com")
	exam := env.exam(t, owner, "Algebra Quiz 1", "John Doe", "Jane Smith", "Michael Johnson")
	env.exam(t, other, "Geometry", "Emily Williams")

	graded := env.submission(t, exam, exam.Students[0].ID, models.SubmissionStatusSubmitted)
	env.submission(t, exam, exam.Students[1].ID, models.SubmissionStatusSubmitted)
	require.NoError(t, env.results.CreateForSubmission(ctx, &models.GradingResult{
		SubmissionID:     graded.ID,
		TotalScore:       85,
		MaxPossibleScore: 100,
		GradedAt:         time.Now().UTC(),
	}))
	_, err = activity.Record(ctx, ActivityEntry{Actor: owner, Action: models.ActivityExamCreated, EntityType: "exam", EntityID: &exam.ID})
	require.NoError(t, err)

	first, err := svc.GetDashboard(ctx, owner)
	require.NoError(t, err)
	require.False(t, first.Cached)
	require.Equal(t, int64(1), first.TotalExams)
	require.Equal(t, int64(3), first.TotalStudents)
	require.Equal(t, int64(2), first.TotalSubmissions)
	require.Equal(t, int64(1), first.PendingGrading)
	require.Equal(t, int64(1), first.Graded)
	require.InDelta(t, 85.0, first.AveragePercentage, 0.001)
	require.Len(t, first.RecentExams, 1)
	require.Equal(t, 1, first.RecentExams[0].GradedCount)
	require.Len(t, first.RecentActivity, 1)
	require.True(t, mini.Exists(dashboardCacheKey(owner.ID)))

	second, err := svc.GetDashboard(ctx, owner)
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.TotalSubmissions, second.TotalSubmissions)

	svc.Invalidate(ctx, owner.ID)
	require.False(t, mini.Exists(dashboardCacheKey(owner.ID)))

	third, err := svc.GetDashboard(ctx, owner)
	require.NoError(t, err)
	require.False(t, third.Cached)
}

func TestDashboardServiceWithoutCache(t *testing.T) {
	env := newTestEnv(t)
	svc := NewDashboardService(env.exams, env.students, env.submissions, env.results, nil, nil, time.Minute, zerolog.Nop())
	owner := env.teacher(t, "owner@example.com")

	dashboard, err := svc.GetDashboard(context.Background(), owner)
	require.NoError(t, err)
	require.Zero(t, dashboard.TotalExams)
	require.Zero(t, dashboard.AveragePercentage)
	require.Empty(t, dashboard.RecentExams)
	require.NotNil(t, dashboard.RecentActivity)

	svc.Invalidate(context.Background(), owner.ID)
}
