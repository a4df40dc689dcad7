package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/events"
	"github.com/noah-isme/mathgrader-api/internal/models"
	"github.com/noah-isme/mathgrader-api/internal/repository"
)

var examDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ExamService manages exams and their student rosters.
type ExamService interface {
	List(ctx context.Context, actor Actor) ([]dto.ExamResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.ExamCreateRequest) (dto.ExamResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.ExamResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.ExamUpdateRequest) (dto.ExamResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type examService struct {
	exams     repository.ExamRepository
	students  repository.StudentRepository
	validator *validator.Validate
	hooks     MutationHooks
	text      plainText
	logger    zerolog.Logger
}

// NewExamService builds an exam service.
func NewExamService(exams repository.ExamRepository, students repository.StudentRepository, validate *validator.Validate, hooks MutationHooks, logger zerolog.Logger) ExamService {
	return &examService{
		exams:     exams,
		students:  students,
		validator: validate,
		hooks:     hooks,
		text:      newPlainText(),
		logger:    logger.With().Str("component", "exam_service").Logger(),
	}
}

func (s *examService) List(ctx context.Context, actor Actor) ([]dto.ExamResponse, error) {
	exams, err := s.exams.ListByOwner(ctx, actor.ID, 0)
	if err != nil {
		return nil, err
	}
	return dto.NewExamResponseSlice(exams), nil
}

func (s *examService) Create(ctx context.Context, actor Actor, payload dto.ExamCreateRequest) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	exam, err := s.buildExam(payload.Title, payload.Subject, payload.Date, payload.Description, payload.TotalQuestions, payload.MaxScore)
	if err != nil {
		return dto.ExamResponse{}, err
	}
	exam.UserID = actor.ID

	if len(payload.Students) > 0 {
		roster, err := s.resolveRoster(ctx, payload.Students)
		if err != nil {
			return dto.ExamResponse{}, err
		}
		exam.Students = roster
	}

	if err := s.exams.Create(ctx, &exam); err != nil {
		return dto.ExamResponse{}, err
	}

	s.hooks.after(ctx, s.logger, mutation{
		entry: ActivityEntry{
			Actor:      actor,
			Action:     models.ActivityExamCreated,
			EntityType: string(ResourceExam),
			EntityID:   uintPtr(exam.ID),
			Metadata:   map[string]interface{}{"title": exam.Title, "students": len(exam.Students)},
		},
		ownerID: actor.ID,
	})

	return s.load(ctx, exam.ID)
}

func (s *examService) Get(ctx context.Context, actor Actor, id uint) (dto.ExamResponse, error) {
	exam, err := s.exams.GetWithDetails(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.ExamResponse{}, ErrExamNotFound
		}
		return dto.ExamResponse{}, err
	}
	if err := authorizeOwner(ResourceExam, exam.ID, exam, actor); err != nil {
		return dto.ExamResponse{}, err
	}
	return dto.NewExamResponse(exam), nil
}

func (s *examService) Update(ctx context.Context, actor Actor, id uint, payload dto.ExamUpdateRequest) (dto.ExamResponse, error) {
	existing, err := s.ownedExam(ctx, actor, id)
	if err != nil {
		return dto.ExamResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	exam, err := s.buildExam(payload.Title, payload.Subject, payload.Date, payload.Description, payload.TotalQuestions, payload.MaxScore)
	if err != nil {
		return dto.ExamResponse{}, err
	}
	exam.ID = existing.ID
	exam.UserID = existing.UserID

	var roster *[]models.Student
	if payload.Students != nil {
		resolved, err := s.resolveRoster(ctx, *payload.Students)
		if err != nil {
			return dto.ExamResponse{}, err
		}
		roster = &resolved
	}

	if err := s.exams.Update(ctx, &exam, roster); err != nil {
		return dto.ExamResponse{}, err
	}

	metadata := map[string]interface{}{"title": exam.Title}
	if roster != nil {
		metadata["students"] = len(*roster)
	}
	s.hooks.after(ctx, s.logger, mutation{
		entry: ActivityEntry{
			Actor:      actor,
			Action:     models.ActivityExamUpdated,
			EntityType: string(ResourceExam),
			EntityID:   uintPtr(exam.ID),
			Metadata:   metadata,
		},
		ownerID: actor.ID,
	})

	return s.load(ctx, exam.ID)
}

func (s *examService) Delete(ctx context.Context, actor Actor, id uint) error {
	exam, err := s.ownedExam(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.exams.DeleteCascade(ctx, exam.ID); err != nil {
		if isNotFound(err) {
			return ErrExamNotFound
		}
		return err
	}

	s.hooks.after(ctx, s.logger, mutation{
		entry: ActivityEntry{
			Actor:      actor,
			Action:     models.ActivityExamDeleted,
			EntityType: string(ResourceExam),
			EntityID:   uintPtr(exam.ID),
			Metadata:   map[string]interface{}{"title": exam.Title},
		},
		ownerID:   actor.ID,
		eventType: events.ExamDeleted,
		eventData: map[string]interface{}{"examId": exam.ID, "ownerId": exam.UserID},
	})

	return nil
}

func (s *examService) ownedExam(ctx context.Context, actor Actor, id uint) (models.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return models.Exam{}, ErrExamNotFound
		}
		return models.Exam{}, err
	}
	if err := authorizeOwner(ResourceExam, exam.ID, exam, actor); err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

func (s *examService) load(ctx context.Context, id uint) (dto.ExamResponse, error) {
	exam, err := s.exams.GetWithDetails(ctx, id)
	if err != nil {
		return dto.ExamResponse{}, err
	}
	return dto.NewExamResponse(exam), nil
}

func (s *examService) buildExam(title, subject, date, description string, totalQuestions, maxScore int) (models.Exam, error) {
	parsedDate, err := parseExamDate(date)
	if err != nil {
		return models.Exam{}, err
	}

	exam := models.Exam{
		Title:          s.text.clean(title),
		Subject:        s.text.clean(subject),
		Date:           parsedDate,
		Description:    s.text.clean(description),
		TotalQuestions: totalQuestions,
		MaxScore:       maxScore,
	}
	if exam.Title == "" || exam.Subject == "" {
		return models.Exam{}, ErrMissingFields
	}
	return exam, nil
}

// resolveRoster links students that exist and creates the rest. An id that does
// not resolve falls back to creating a student from the name, if one was given.
func (s *examService) resolveRoster(ctx context.Context, inputs []dto.StudentInput) ([]models.Student, error) {
	roster := make([]models.Student, 0, len(inputs))
	seen := make(map[uint]struct{}, len(inputs))

	for _, input := range inputs {
		name := s.text.clean(input.Name)

		if input.ID != nil && *input.ID != 0 {
			student, err := s.students.GetByID(ctx, *input.ID)
			switch {
			case err == nil:
				if _, dup := seen[student.ID]; !dup {
					seen[student.ID] = struct{}{}
					roster = append(roster, student)
				}
				continue
			case !isNotFound(err):
				return nil, err
			case name == "":
				return nil, ErrStudentNotFound
			}
		}

		if name == "" {
			return nil, ErrMissingFields
		}
		roster = append(roster, models.Student{Name: name})
	}

	return roster, nil
}

func parseExamDate(value string) (time.Time, error) {
	for _, layout := range examDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
