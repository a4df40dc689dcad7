package service

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mathgrader-api/internal/events"
	"github.com/noah-isme/mathgrader-api/internal/models"
	"github.com/noah-isme/mathgrader-api/pkg/grader"
)

func TestGradingServiceGradesSubmission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	publisher := &recordingPublisher{}
	dashboard := &invalidationCounter{}
	hooks := MutationHooks{Activity: NewActivityService(env.activity, zerolog.Nop()), Events: publisher, Dashboard: dashboard}
	scorer := grader.NewMockScorer(grader.WithRand(rand.New(rand.NewPCG(1, 2))))
	svc := NewGradingService(env.submissions, env.results, scorer, hooks, zerolog.Nop())

	owner := env.teacher(t, "owner@example.com")
	exam := env.exam(t, owner, "Algebra Quiz 1", "John Doe")
	submission := env.submission(t, exam, exam.Students[0].ID, models.SubmissionStatusSubmitted)

	result, err := svc.Grade(ctx, owner, submission.ID)
	require.NoError(t, err)
	require.Len(t, result.Answers, 5)
	require.Equal(t, 100, result.MaxPossibleScore)

	sum := 0
	for i, answer := range result.Answers {
		require.Equal(t, i+1, answer.QuestionNumber)
		require.Equal(t, grader.PointsPerQuestion, answer.MaxScore)
		require.NotEmpty(t, answer.ConfidenceLevel)
		sum += answer.Score
	}
	require.Equal(t, sum, result.TotalScore)

	stored, err := env.submissions.GetByID(ctx, submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, stored.Status)
	require.Contains(t, publisher.events, events.GradingCompleted)
	require.Equal(t, []uint{owner.ID}, dashboard.owners)
}

func TestGradingServiceRejectsSecondGrading(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	scorer := &fixedScorer{answers: []grader.Answer{
		{QuestionNumber: 1, Score: 20, MaxScore: 20, Confidence: 0.97, Feedback: grader.FeedbackCorrect},
		{QuestionNumber: 2, Score: 12, MaxScore: 20, Confidence: 0.85, Feedback: grader.FeedbackPartial},
	}}
	svc := NewGradingService(env.submissions, env.results, scorer, MutationHooks{}, zerolog.Nop())

	owner := env.teacher(t, "owner@example.com")
	exam := env.exam(t, owner, "Algebra Quiz 1", "John Doe")
	submission := env.submission(t, exam, exam.Students[0].ID, models.SubmissionStatusSubmitted)

	first, err := svc.Grade(ctx, owner, submission.ID)
	require.NoError(t, err)
	require.Equal(t, 32, first.TotalScore)

	scorer.answers = []grader.Answer{{QuestionNumber: 1, Score: 0, MaxScore: 20}}
	_, err = svc.Grade(ctx, owner, submission.ID)
	require.ErrorIs(t, err, ErrAlreadyGraded)
	require.Equal(t, 1, scorer.calls)

	var results []models.GradingResult
	require.NoError(t, env.db.Preload("Answers").Find(&results).Error)
	require.Len(t, results, 1)
	require.Equal(t, 32, results[0].TotalScore)
	require.Len(t, results[0].Answers, 2)
}

func TestGradingServiceChecksOwnershipAndExistence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	scorer := &fixedScorer{}
	svc := NewGradingService(env.submissions, env.results, scorer, MutationHooks{}, zerolog.Nop())

	owner := env.teacher(t, "owner@example.com")
	intruder := env.teacher(t, "intruder@example.com")
	exam := env.exam(t, owner, "Algebra Quiz 1", "John Doe")
	submission := env.submission(t, exam, exam.Students[0].ID, models.SubmissionStatusSubmitted)

	_, err := svc.Grade(ctx, intruder, submission.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Grade(ctx, owner, submission.ID+100)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
	require.Zero(t, scorer.calls)
}
