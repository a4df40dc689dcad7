package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/events"
	"github.com/noah-isme/mathgrader-api/internal/models"
	"github.com/noah-isme/mathgrader-api/pkg/grader"
)

type submissionFixture struct {
	env       testEnv
	svc       SubmissionService
	storage   *memoryStorage
	publisher *recordingPublisher
	owner     Actor
	exam      models.Exam
}

func newSubmissionFixture(t *testing.T) submissionFixture {
	t.Helper()
	env := newTestEnv(t)
	storage := &memoryStorage{}
	publisher := &recordingPublisher{}
	uploader := NewSheetUploader(storage, 1, zerolog.Nop())
	hooks := MutationHooks{Activity: NewActivityService(env.activity, zerolog.Nop()), Events: publisher}

	owner := env.teacher(t, "owner@example.com")
	exam := env.exam(t, owner, "Algebra Quiz 1", "John Doe", "Jane Smith")

	return submissionFixture{
		env:       env,
		svc:       NewSubmissionService(env.submissions, env.exams, env.students, uploader, env.validate, hooks, zerolog.Nop()),
		storage:   storage,
		publisher: publisher,
		owner:     owner,
		exam:      exam,
	}
}

func TestSubmissionServiceCreateStoresUploadedSheet(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	studentID := f.exam.Students[0].ID

	file := buildFileHeader(t, "Quiz Sheet.png", pngHeader)
	created, err := f.svc.Create(ctx, f.owner, dto.SubmissionCreateRequest{ExamID: f.exam.ID, StudentID: studentID}, file)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, created.Status)
	require.NotNil(t, created.SubmittedAt)
	require.Contains(t, created.ImageURL, "https://cdn.example.com/exams/")
	require.Len(t, f.storage.names, 1)
	require.Contains(t, f.publisher.events, events.SubmissionUploaded)

	again, err := f.svc.Create(ctx, f.owner, dto.SubmissionCreateRequest{ExamID: f.exam.ID, StudentID: studentID, ImageURL: "https://cdn.example.com/retake.png"}, nil)
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)
	require.Equal(t, "https://cdn.example.com/retake.png", again.ImageURL)

	var count int64
	require.NoError(t, f.env.db.Model(&models.Submission{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSubmissionServiceCreateValidation(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	studentID := f.exam.Students[0].ID

	_, err := f.svc.Create(ctx, f.owner, dto.SubmissionCreateRequest{StudentID: studentID}, nil)
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	_, err = f.svc.Create(ctx, f.owner, dto.SubmissionCreateRequest{ExamID: f.exam.ID + 50, StudentID: studentID}, nil)
	require.ErrorIs(t, err, ErrExamNotFound)

	_, err = f.svc.Create(ctx, f.owner, dto.SubmissionCreateRequest{ExamID: f.exam.ID, StudentID: 999}, nil)
	require.ErrorIs(t, err, ErrStudentNotFound)

	intruder := f.env.teacher(t, "intruder@example.com")
	_, err = f.svc.Create(ctx, intruder, dto.SubmissionCreateRequest{ExamID: f.exam.ID, StudentID: studentID}, nil)
	require.ErrorIs(t, err, ErrForbidden)

	text := buildFileHeader(t, "notes.txt", []byte("just some text"))
	_, err = f.svc.Create(ctx, f.owner, dto.SubmissionCreateRequest{ExamID: f.exam.ID, StudentID: studentID}, text)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)
	require.Empty(t, f.storage.names)
}

func TestSubmissionServiceGradedSheetIsLocked(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	graded := f.env.submission(t, f.exam, f.exam.Students[1].ID, models.SubmissionStatusGraded)

	_, err := f.svc.Create(ctx, f.owner, dto.SubmissionCreateRequest{ExamID: f.exam.ID, StudentID: graded.StudentID, ImageURL: "https://cdn.example.com/new.png"}, nil)
	require.ErrorIs(t, err, ErrSubmissionLocked)

	_, err = f.svc.Update(ctx, f.owner, graded.ID, dto.SubmissionUpdateRequest{Status: models.SubmissionStatusSubmitted})
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestSubmissionServiceUpdateGetDelete(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	submission := f.env.submission(t, f.exam, f.exam.Students[0].ID, models.SubmissionStatusNotSubmitted)

	updated, err := f.svc.Update(ctx, f.owner, submission.ID, dto.SubmissionUpdateRequest{Status: models.SubmissionStatusSubmitted})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, updated.Status)

	loaded, err := f.svc.Get(ctx, f.owner, submission.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Exam)
	require.Equal(t, f.exam.ID, loaded.Exam.ID)
	require.NotNil(t, loaded.Student)
	require.Equal(t, "John Doe", loaded.Student.Name)

	intruder := f.env.teacher(t, "intruder@example.com")
	_, err = f.svc.Get(ctx, intruder, submission.ID)
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, f.svc.Delete(ctx, intruder, submission.ID), ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, f.owner, submission.ID))
	_, err = f.svc.Get(ctx, f.owner, submission.ID)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmissionServiceAnalysis(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	submission := f.env.submission(t, f.exam, f.exam.Students[0].ID, models.SubmissionStatusSubmitted)

	_, err := f.svc.Analysis(ctx, f.owner, submission.ID)
	require.ErrorIs(t, err, ErrSubmissionNotGraded)

	result := models.GradingResult{
		SubmissionID:     submission.ID,
		TotalScore:       60,
		MaxPossibleScore: 100,
		Answers: []models.GradedAnswer{
			{QuestionNumber: 1, Score: 20, MaxScore: 20, Confidence: 0.95},
			{QuestionNumber: 2, Score: 20, MaxScore: 20, Confidence: 0.9},
			{QuestionNumber: 3, Score: 20, MaxScore: 20, Confidence: 0.85},
			{QuestionNumber: 4, Score: 0, MaxScore: 20, Confidence: 0.6},
			{QuestionNumber: 5, Score: 0, MaxScore: 20, Confidence: 0.75},
		},
	}
	require.NoError(t, f.env.results.CreateForSubmission(ctx, &result))

	analysis, err := f.svc.Analysis(ctx, f.owner, submission.ID)
	require.NoError(t, err)
	require.InDelta(t, 60.0, analysis.Percentage, 0.001)
	require.InDelta(t, 0.81, analysis.AverageConfidence, 0.001)
	require.Equal(t, []int{4, 5}, analysis.LowConfidenceQuestions)
	require.True(t, analysis.NeedsReview)
	require.Len(t, analysis.Answers, 5)
	require.Equal(t, grader.ConfidenceLevel(0.6), analysis.Answers[3].ConfidenceLevel)
}
