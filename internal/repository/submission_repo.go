package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/mathgrader-api/internal/models"
)

// SubmissionStatusCounts tallies the owner's submissions per lifecycle status.
type SubmissionStatusCounts map[string]int64

// Total returns the number of submissions across every status.
func (c SubmissionStatusCounts) Total() int64 {
	var total int64
	for _, count := range c {
		total += count
	}
	return total
}

// SubmissionRepository provides persistence operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetWithDetails(ctx context.Context, id uint) (models.Submission, error)
	FindByExamAndStudent(ctx context.Context, examID, studentID uint) (models.Submission, error)
	Delete(ctx context.Context, id uint) error
	CountByStatusForOwner(ctx context.Context, ownerID uint) (SubmissionStatusCounts, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(submission).Error
}

// Update persists the mutable submission columns.
func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).
		Model(submission).
		Omit(clause.Associations).
		Select("status", "submitted_at", "image_url").
		Updates(submission).Error
}

// GetByID loads the submission with its parent exam, which carries the owner.
func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Preload("Exam").First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

// GetWithDetails loads the submission with exam, student and grading result answers.
func (r *submissionRepository) GetWithDetails(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Exam").
		Preload("Student").
		Preload("GradingResult").
		Preload("GradingResult.Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("graded_answers.question_number ASC")
		}).
		First(&submission, id).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) FindByExamAndStudent(ctx context.Context, examID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

// Delete removes the submission with its grading result and answers.
func (r *submissionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resultIDs := tx.Model(&models.GradingResult{}).Select("id").Where("submission_id = ?", id)
		if err := tx.Where("grading_result_id IN (?)", resultIDs).Delete(&models.GradedAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_id = ?", id).Delete(&models.GradingResult{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Submission{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *submissionRepository) CountByStatusForOwner(ctx context.Context, ownerID uint) (SubmissionStatusCounts, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("submissions.status AS status, COUNT(*) AS total").
		Joins("JOIN exams ON exams.id = submissions.exam_id").
		Where("exams.user_id = ?", ownerID).
		Group("submissions.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := SubmissionStatusCounts{}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
