package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/events"
	"github.com/noah-isme/mathgrader-api/internal/models"
	"github.com/noah-isme/mathgrader-api/internal/observability"
	"github.com/noah-isme/mathgrader-api/internal/repository"
	"github.com/noah-isme/mathgrader-api/pkg/grader"
)

// GradingService scores submissions and stores the results.
type GradingService interface {
	Grade(ctx context.Context, actor Actor, submissionID uint) (dto.GradingResultResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	results     repository.GradingRepository
	scorer      grader.Scorer
	hooks       MutationHooks
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the grading service around a scoring strategy.
func NewGradingService(submissions repository.SubmissionRepository, results repository.GradingRepository, scorer grader.Scorer, hooks MutationHooks, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: submissions,
		results:     results,
		scorer:      scorer,
		hooks:       hooks,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/mathgrader-api/internal/service/grading"),
		now:         time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, actor Actor, submissionID uint) (dto.GradingResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.grade")
	span.SetAttributes(
		attribute.Int("grading.submission_id", int(submissionID)),
		attribute.Int("grading.actor_id", int(actor.ID)),
	)
	defer span.End()

	fail := func(outcome string, err error) (dto.GradingResultResponse, error) {
		observability.GradingRuns().WithLabelValues(outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return dto.GradingResultResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if isNotFound(err) {
			return fail("not_found", ErrSubmissionNotFound)
		}
		return fail("failed", err)
	}
	if err := authorizeOwner(ResourceSubmission, submission.ID, submission, actor); err != nil {
		return fail("forbidden", err)
	}

	graded, err := s.results.ExistsForSubmission(ctx, submission.ID)
	if err != nil {
		return fail("failed", err)
	}
	if graded {
		return fail("already_graded", ErrAlreadyGraded)
	}

	start := s.now()
	answers, err := s.scorer.Score(ctx, grader.Request{
		SubmissionID:   submission.ID,
		ImageURL:       submission.ImageURL,
		TotalQuestions: submission.Exam.TotalQuestions,
	})
	if err != nil {
		return fail("failed", err)
	}

	total, _ := grader.Totals(answers)
	result := models.GradingResult{
		SubmissionID:     submission.ID,
		TotalScore:       total,
		MaxPossibleScore: submission.Exam.TotalQuestions * grader.PointsPerQuestion,
		GradedAt:         s.now().UTC(),
		Answers:          make([]models.GradedAnswer, 0, len(answers)),
	}
	for _, answer := range answers {
		result.Answers = append(result.Answers, models.GradedAnswer{
			QuestionNumber: answer.QuestionNumber,
			StudentAnswer:  answer.StudentAnswer,
			CorrectAnswer:  answer.CorrectAnswer,
			Score:          answer.Score,
			MaxScore:       answer.MaxScore,
			Confidence:     answer.Confidence,
			Feedback:       answer.Feedback,
		})
	}

	// the unique index on submission_id settles concurrent requests
	if err := s.results.CreateForSubmission(ctx, &result); err != nil {
		if isDuplicateKey(err) {
			return fail("already_graded", ErrAlreadyGraded)
		}
		return fail("failed", err)
	}

	observability.GradingRuns().WithLabelValues("graded").Inc()
	observability.GradingDuration().Observe(s.now().Sub(start).Seconds())
	percentage := 0.0
	if result.MaxPossibleScore > 0 {
		percentage = float64(result.TotalScore) / float64(result.MaxPossibleScore) * 100
		observability.GradingScore().Observe(percentage)
	}
	span.SetAttributes(
		attribute.Int("grading.total_score", result.TotalScore),
		attribute.Int("grading.max_score", result.MaxPossibleScore),
	)
	span.SetStatus(codes.Ok, "graded")

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Int("total_score", result.TotalScore).
		Int("max_score", result.MaxPossibleScore).
		Msg("submission graded")

	s.hooks.after(ctx, s.logger, mutation{
		entry: ActivityEntry{
			Actor:      actor,
			Action:     models.ActivitySubmissionGraded,
			EntityType: string(ResourceSubmission),
			EntityID:   uintPtr(submission.ID),
			Metadata: map[string]interface{}{
				"examId":     submission.ExamID,
				"totalScore": result.TotalScore,
				"maxScore":   result.MaxPossibleScore,
			},
		},
		ownerID:   actor.ID,
		eventType: events.GradingCompleted,
		eventData: map[string]interface{}{
			"submissionId":     submission.ID,
			"examId":           submission.ExamID,
			"studentId":        submission.StudentID,
			"totalScore":       result.TotalScore,
			"maxPossibleScore": result.MaxPossibleScore,
			"percentage":       percentage,
		},
	})

	return dto.NewGradingResultResponse(result), nil
}
