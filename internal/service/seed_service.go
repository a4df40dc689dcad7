package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/mathgrader-api/internal/models"
	"github.com/noah-isme/mathgrader-api/internal/repository"
)

// Demo account created by the seeder.
const (
	DemoTeacherEmail    = "teacher@example.com"
	DemoTeacherPassword = "password"
	demoTeacherName     = "Test Teacher"
	demoImageURL        = "/mock-submission.jpg"
)

// SeedSummary reports what a seeding run inserted.
type SeedSummary struct {
	Skipped     bool
	UserID      uint
	ExamID      uint
	Students    int
	Submissions int
	Results     int
}

// SeedService populates a fresh database with demo data.
type SeedService interface {
	SeedDemo(ctx context.Context) (SeedSummary, error)
}

type seedService struct {
	users       repository.UserRepository
	exams       repository.ExamRepository
	submissions repository.SubmissionRepository
	results     repository.GradingRepository
	bcryptCost  int
	logger      zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(users repository.UserRepository, exams repository.ExamRepository, submissions repository.SubmissionRepository, results repository.GradingRepository, bcryptCost int, logger zerolog.Logger) SeedService {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &seedService{
		users:       users,
		exams:       exams,
		submissions: submissions,
		results:     results,
		bcryptCost:  bcryptCost,
		logger:      logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedDemo is idempotent: when the demo teacher already owns an exam nothing is written.
func (s *seedService) SeedDemo(ctx context.Context) (SeedSummary, error) {
	user, err := s.ensureTeacher(ctx)
	if err != nil {
		return SeedSummary{}, err
	}

	summary := SeedSummary{UserID: user.ID}
	existing, err := s.exams.CountByOwner(ctx, user.ID)
	if err != nil {
		return SeedSummary{}, err
	}
	if existing > 0 {
		summary.Skipped = true
		s.logger.Info().Uint("user_id", user.ID).Msg("demo data already present")
		return summary, nil
	}

	exam := models.Exam{
		Title:          "Algebra Quiz 1",
		Subject:        "Algebra",
		Date:           time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		Description:    "This quiz covers basic algebraic equations, including linear equations, quadratic equations, and systems of equations.",
		TotalQuestions: 5,
		MaxScore:       100,
		UserID:         user.ID,
		Students: []models.Student{
			{Name: "John Doe"},
			{Name: "Jane Smith"},
			{Name: "Michael Johnson"},
			{Name: "Emily Williams"},
			{Name: "Robert Brown"},
		},
	}
	if err := s.exams.Create(ctx, &exam); err != nil {
		return SeedSummary{}, fmt.Errorf("seed exam: %w", err)
	}
	summary.ExamID = exam.ID
	summary.Students = len(exam.Students)

	plans := []struct {
		student     int
		status      string
		submittedAt time.Time
		result      *models.GradingResult
	}{
		{0, models.SubmissionStatusGraded, time.Date(2025, time.March, 10, 10, 30, 0, 0, time.UTC), demoResult(85, time.Date(2025, time.March, 10, 11, 30, 0, 0, time.UTC), "w = 6", 5, "Incorrect solution. Review the concept and try again.")},
		{1, models.SubmissionStatusGraded, time.Date(2025, time.March, 10, 10, 45, 0, 0, time.UTC), demoResult(92, time.Date(2025, time.March, 10, 11, 45, 0, 0, time.UTC), "w = 7", 12, "Partially correct. Some steps are missing or incorrect.")},
		{2, models.SubmissionStatusSubmitted, time.Date(2025, time.March, 10, 11, 0, 0, 0, time.UTC), nil},
	}

	for _, plan := range plans {
		submittedAt := plan.submittedAt
		submission := models.Submission{
			ExamID:      exam.ID,
			StudentID:   exam.Students[plan.student].ID,
			Status:      plan.status,
			SubmittedAt: &submittedAt,
			ImageURL:    demoImageURL,
		}
		if err := s.submissions.Create(ctx, &submission); err != nil {
			return SeedSummary{}, fmt.Errorf("seed submission: %w", err)
		}
		summary.Submissions++

		if plan.result == nil {
			continue
		}
		plan.result.SubmissionID = submission.ID
		if err := s.results.CreateForSubmission(ctx, plan.result); err != nil {
			return SeedSummary{}, fmt.Errorf("seed grading result: %w", err)
		}
		summary.Results++
	}

	s.logger.Info().
		Uint("exam_id", summary.ExamID).
		Int("students", summary.Students).
		Int("submissions", summary.Submissions).
		Msg("demo data seeded")

	return summary, nil
}

func (s *seedService) ensureTeacher(ctx context.Context) (models.User, error) {
	user, err := s.users.GetByEmail(ctx, DemoTeacherEmail)
	if err == nil {
		return user, nil
	}
	if !isNotFound(err) {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoTeacherPassword), s.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash demo password: %w", err)
	}
	user = models.User{
		Email:        DemoTeacherEmail,
		Name:         demoTeacherName,
		PasswordHash: string(hash),
		Role:         models.RoleTeacher,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if isDuplicateKey(err) {
			return s.users.GetByEmail(ctx, DemoTeacherEmail)
		}
		return models.User{}, err
	}
	return user, nil
}

// demoResult builds a five question result where only question four loses points.
func demoResult(total int, gradedAt time.Time, fourthAnswer string, fourthScore int, fourthFeedback string) *models.GradingResult {
	const correct = "Correct solution with proper steps shown."
	answers := []models.GradedAnswer{
		{QuestionNumber: 1, StudentAnswer: "x = 5", CorrectAnswer: "x = 5", Score: 20, MaxScore: 20, Confidence: 0.98, Feedback: correct},
		{QuestionNumber: 2, StudentAnswer: "y = 3x + 2", CorrectAnswer: "y = 3x + 2", Score: 20, MaxScore: 20, Confidence: 0.97, Feedback: correct},
		{QuestionNumber: 3, StudentAnswer: "z = 12", CorrectAnswer: "z = 12", Score: 20, MaxScore: 20, Confidence: 0.99, Feedback: correct},
		{QuestionNumber: 4, StudentAnswer: fourthAnswer, CorrectAnswer: "w = 8", Score: fourthScore, MaxScore: 20, Confidence: 0.85, Feedback: fourthFeedback},
		{QuestionNumber: 5, StudentAnswer: "a = 4, b = 3", CorrectAnswer: "a = 4, b = 3", Score: 20, MaxScore: 20, Confidence: 0.96, Feedback: correct},
	}
	return &models.GradingResult{
		TotalScore:       total,
		MaxPossibleScore: 100,
		GradedAt:         gradedAt,
		Answers:          answers,
	}
}
