package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/mathgrader-api/internal/models"
)

// ExamRepository provides persistence operations for exams and their rosters.
type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (models.Exam, error)
	GetWithDetails(ctx context.Context, id uint) (models.Exam, error)
	ListByOwner(ctx context.Context, ownerID uint, limit int) ([]models.Exam, error)
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
	Update(ctx context.Context, exam *models.Exam, roster *[]models.Student) error
	DeleteCascade(ctx context.Context, id uint) error
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository constructs an exam repository.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

// Create inserts the exam together with its roster. Students without an id are
// created; existing ones are only linked.
func (r *examRepository) Create(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Omit("User", "Submissions").Create(exam).Error
}

// GetByID loads the exam row without associations.
func (r *examRepository) GetByID(ctx context.Context, id uint) (models.Exam, error) {
	var exam models.Exam
	if err := r.db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

// GetWithDetails loads the exam with roster, submissions, students and grading summaries.
func (r *examRepository) GetWithDetails(ctx context.Context, id uint) (models.Exam, error) {
	var exam models.Exam
	if err := r.withDetails(ctx).First(&exam, id).Error; err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

func (r *examRepository) ListByOwner(ctx context.Context, ownerID uint, limit int) ([]models.Exam, error) {
	query := r.withDetails(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var exams []models.Exam
	if err := query.Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *examRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Exam{}).Where("user_id = ?", ownerID).Count(&count).Error
	return count, err
}

// Update writes the editable exam columns. A non-nil roster replaces the whole
// student set: existing links are cleared before the new roster is attached.
func (r *examRepository) Update(ctx context.Context, exam *models.Exam, roster *[]models.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":           exam.Title,
			"subject":         exam.Subject,
			"date":            exam.Date,
			"description":     exam.Description,
			"total_questions": exam.TotalQuestions,
			"max_score":       exam.MaxScore,
		}
		if err := tx.Model(&models.Exam{ID: exam.ID}).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return err
		}

		if roster == nil {
			return nil
		}

		// An association is single-use once Clear has run, so Append gets its own.
		if err := tx.Model(&models.Exam{ID: exam.ID}).Association("Students").Clear(); err != nil {
			return err
		}
		if len(*roster) == 0 {
			return nil
		}
		return tx.Model(&models.Exam{ID: exam.ID}).Association("Students").Append(*roster)
	})
}

// DeleteCascade removes the exam with its graded answers, grading results,
// submissions and roster links in a single transaction.
func (r *examRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submissionIDs := tx.Model(&models.Submission{}).Select("id").Where("exam_id = ?", id)
		resultIDs := tx.Model(&models.GradingResult{}).Select("id").Where("submission_id IN (?)", submissionIDs)

		if err := tx.Where("grading_result_id IN (?)", resultIDs).Delete(&models.GradedAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_id IN (?)", submissionIDs).Delete(&models.GradingResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Exam{ID: id}).Association("Students").Clear(); err != nil {
			return err
		}

		result := tx.Delete(&models.Exam{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *examRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Students", func(db *gorm.DB) *gorm.DB {
			return db.Order("students.name ASC")
		}).
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("submissions.id ASC")
		}).
		Preload("Submissions.Student").
		Preload("Submissions.GradingResult")
}
