package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/mathgrader-api/internal/models"
)

// StudentRepository provides access to student records.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Student, error)
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// ListByOwner returns the distinct students enrolled on any exam the owner created.
func (r *studentRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("students.id IN (?)", r.rosterQuery(ctx, ownerID)).
		Order("students.name ASC").
		Order("students.id ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("students.id IN (?)", r.rosterQuery(ctx, ownerID)).
		Count(&count).Error
	return count, err
}

func (r *studentRepository) rosterQuery(ctx context.Context, ownerID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("exam_students").
		Select("exam_students.student_id").
		Joins("JOIN exams ON exams.id = exam_students.exam_id").
		Where("exams.user_id = ?", ownerID)
}
