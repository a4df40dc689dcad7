package service

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/events"
	"github.com/noah-isme/mathgrader-api/internal/models"
	"github.com/noah-isme/mathgrader-api/internal/repository"
	"github.com/noah-isme/mathgrader-api/pkg/grader"
)

// SubmissionService manages answer sheet submissions.
type SubmissionService interface {
	Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.SubmissionUpdateRequest) (dto.SubmissionResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	Analysis(ctx context.Context, actor Actor, id uint) (dto.SubmissionAnalysisResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	exams       repository.ExamRepository
	students    repository.StudentRepository
	uploader    SheetUploader
	validator   *validator.Validate
	hooks       MutationHooks
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService builds a submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, exams repository.ExamRepository, students repository.StudentRepository, uploader SheetUploader, validate *validator.Validate, hooks MutationHooks, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		exams:       exams,
		students:    students,
		uploader:    uploader,
		validator:   validate,
		hooks:       hooks,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Create upserts the submission for the (exam, student) pair. An optional file is
// stored first and its URL replaces payload.ImageURL.
func (s *submissionService) Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, payload.ExamID)
	if err != nil {
		if isNotFound(err) {
			return dto.SubmissionResponse{}, ErrExamNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if err := authorizeOwner(ResourceExam, exam.ID, exam, actor); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if isNotFound(err) {
			return dto.SubmissionResponse{}, ErrStudentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	existing, found, err := s.findExisting(ctx, payload.ExamID, payload.StudentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if found && existing.IsGraded() {
		return dto.SubmissionResponse{}, ErrSubmissionLocked
	}

	imageURL := payload.ImageURL
	if file != nil {
		if s.uploader == nil {
			return dto.SubmissionResponse{}, ErrStorageUnavailable
		}
		stored, err := s.uploader.Store(ctx, exam.ID, payload.StudentID, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		imageURL = stored.URL
	}

	submittedAt := s.now().UTC()
	var submission models.Submission
	if found {
		submission, err = s.resubmit(ctx, existing, imageURL, submittedAt)
	} else {
		submission = models.Submission{
			ExamID:      payload.ExamID,
			StudentID:   payload.StudentID,
			Status:      models.SubmissionStatusSubmitted,
			SubmittedAt: &submittedAt,
			ImageURL:    imageURL,
		}
		err = s.submissions.Create(ctx, &submission)
		if isDuplicateKey(err) {
			// lost a race with a concurrent first upload for the same pair
			existing, found, err = s.findExisting(ctx, payload.ExamID, payload.StudentID)
			if err == nil && found {
				if existing.IsGraded() {
					return dto.SubmissionResponse{}, ErrSubmissionLocked
				}
				submission, err = s.resubmit(ctx, existing, imageURL, submittedAt)
			}
		}
	}
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.hooks.after(ctx, s.logger, mutation{
		entry: ActivityEntry{
			Actor:      actor,
			Action:     models.ActivitySubmissionUploaded,
			EntityType: string(ResourceSubmission),
			EntityID:   uintPtr(submission.ID),
			Metadata: map[string]interface{}{
				"examId":    submission.ExamID,
				"studentId": submission.StudentID,
				"resubmit":  found,
			},
		},
		ownerID:   actor.ID,
		eventType: events.SubmissionUploaded,
		eventData: map[string]interface{}{
			"submissionId": submission.ID,
			"examId":       submission.ExamID,
			"studentId":    submission.StudentID,
			"imageUrl":     submission.ImageURL,
		},
	})

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetWithDetails(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if err := authorizeOwner(ResourceSubmission, submission.ID, submission, actor); err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

// Update changes status and image. Empty fields keep their stored value and the
// status may only move forward.
func (s *submissionService) Update(ctx context.Context, actor Actor, id uint, payload dto.SubmissionUpdateRequest) (dto.SubmissionResponse, error) {
	submission, err := s.ownedSubmission(ctx, actor, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	previous := submission.Status
	if payload.Status != "" {
		if !models.CanTransition(submission.Status, payload.Status) {
			return dto.SubmissionResponse{}, ErrInvalidStatusTransition
		}
		submission.Status = payload.Status
		if submission.SubmittedAt == nil && payload.Status != models.SubmissionStatusNotSubmitted {
			now := s.now().UTC()
			submission.SubmittedAt = &now
		}
	}
	if payload.ImageURL != "" {
		submission.ImageURL = payload.ImageURL
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.hooks.after(ctx, s.logger, mutation{
		entry: ActivityEntry{
			Actor:      actor,
			Action:     models.ActivitySubmissionUpdated,
			EntityType: string(ResourceSubmission),
			EntityID:   uintPtr(submission.ID),
			Metadata:   map[string]interface{}{"from": previous, "to": submission.Status},
		},
		ownerID: actor.ID,
	})

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Delete(ctx context.Context, actor Actor, id uint) error {
	submission, err := s.ownedSubmission(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.submissions.Delete(ctx, submission.ID); err != nil {
		if isNotFound(err) {
			return ErrSubmissionNotFound
		}
		return err
	}

	s.hooks.after(ctx, s.logger, mutation{
		entry: ActivityEntry{
			Actor:      actor,
			Action:     models.ActivitySubmissionDeleted,
			EntityType: string(ResourceSubmission),
			EntityID:   uintPtr(submission.ID),
			Metadata:   map[string]interface{}{"examId": submission.ExamID, "studentId": submission.StudentID},
		},
		ownerID: actor.ID,
	})

	return nil
}

func (s *submissionService) Analysis(ctx context.Context, actor Actor, id uint) (dto.SubmissionAnalysisResponse, error) {
	submission, err := s.submissions.GetWithDetails(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.SubmissionAnalysisResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionAnalysisResponse{}, err
	}
	if err := authorizeOwner(ResourceSubmission, submission.ID, submission, actor); err != nil {
		return dto.SubmissionAnalysisResponse{}, err
	}
	if submission.GradingResult == nil {
		return dto.SubmissionAnalysisResponse{}, ErrSubmissionNotGraded
	}

	result := *submission.GradingResult
	answers := dto.GraderAnswers(result.Answers)
	confidence := grader.AnalyzeConfidence(answers)

	percentage := 0.0
	if result.MaxPossibleScore > 0 {
		percentage = float64(result.TotalScore) / float64(result.MaxPossibleScore) * 100
	}

	return dto.SubmissionAnalysisResponse{
		SubmissionID:           submission.ID,
		TotalScore:             result.TotalScore,
		MaxPossibleScore:       result.MaxPossibleScore,
		Percentage:             percentage,
		AverageConfidence:      confidence.AverageConfidence,
		LowConfidenceQuestions: confidence.LowConfidenceQuestions,
		NeedsReview:            confidence.NeedsReview,
		Feedback:               grader.FeedbackSummary(result.TotalScore, result.MaxPossibleScore, answers),
		Answers:                dto.NewGradingResultResponse(result).Answers,
	}, nil
}

func (s *submissionService) ownedSubmission(ctx context.Context, actor Actor, id uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	if err := authorizeOwner(ResourceSubmission, submission.ID, submission, actor); err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (s *submissionService) findExisting(ctx context.Context, examID, studentID uint) (models.Submission, bool, error) {
	submission, err := s.submissions.FindByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if isNotFound(err) {
			return models.Submission{}, false, nil
		}
		return models.Submission{}, false, err
	}
	return submission, true, nil
}

func (s *submissionService) resubmit(ctx context.Context, submission models.Submission, imageURL string, submittedAt time.Time) (models.Submission, error) {
	submission.Status = models.SubmissionStatusSubmitted
	submission.SubmittedAt = &submittedAt
	if imageURL != "" {
		submission.ImageURL = imageURL
	}
	if err := s.submissions.Update(ctx, &submission); err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}
