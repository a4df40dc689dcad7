package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/repository"
)

// StudentService lists the students a teacher works with.
type StudentService interface {
	List(ctx context.Context, actor Actor) ([]dto.StudentLite, error)
}

type studentService struct {
	students repository.StudentRepository
	logger   zerolog.Logger
}

// NewStudentService constructs a student service.
func NewStudentService(students repository.StudentRepository, logger zerolog.Logger) StudentService {
	return &studentService{
		students: students,
		logger:   logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context, actor Actor) ([]dto.StudentLite, error) {
	students, err := s.students.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewStudentLiteSlice(students), nil
}
