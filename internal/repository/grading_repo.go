package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/mathgrader-api/internal/models"
)

// GradingRepository persists grading results.
type GradingRepository interface {
	ExistsForSubmission(ctx context.Context, submissionID uint) (bool, error)
	CreateForSubmission(ctx context.Context, result *models.GradingResult) error
	AveragePercentageForOwner(ctx context.Context, ownerID uint) (float64, error)
}

type gradingRepository struct {
	db *gorm.DB
}

// NewGradingRepository constructs a grading repository.
func NewGradingRepository(db *gorm.DB) GradingRepository {
	return &gradingRepository{db: db}
}

func (r *gradingRepository) ExistsForSubmission(ctx context.Context, submissionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GradingResult{}).
		Where("submission_id = ?", submissionID).
		Count(&count).Error
	return count > 0, err
}

// CreateForSubmission inserts the result with its answers and marks the submission
// graded in one transaction. The unique index on submission_id rejects a second
// result with gorm.ErrDuplicatedKey.
func (r *gradingRepository) CreateForSubmission(ctx context.Context, result *models.GradingResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return err
		}

		return tx.Model(&models.Submission{}).
			Where("id = ?", result.SubmissionID).
			Update("status", models.SubmissionStatusGraded).Error
	})
}

// AveragePercentageForOwner averages total/max across the owner's graded submissions.
func (r *gradingRepository) AveragePercentageForOwner(ctx context.Context, ownerID uint) (float64, error) {
	var row struct {
		Average *float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.GradingResult{}).
		Select("AVG(grading_results.total_score * 100.0 / grading_results.max_possible_score) AS average").
		Joins("JOIN submissions ON submissions.id = grading_results.submission_id").
		Joins("JOIN exams ON exams.id = submissions.exam_id").
		Where("exams.user_id = ? AND grading_results.max_possible_score > 0", ownerID).
		Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if row.Average == nil {
		return 0, nil
	}
	return *row.Average, nil
}
