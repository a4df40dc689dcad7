package models

import "time"

// Submission statuses, ordered by lifecycle stage.
const (
	SubmissionStatusNotSubmitted = "not_submitted"
	SubmissionStatusSubmitted    = "submitted"
	SubmissionStatusGraded       = "graded"
)

var submissionStage = map[string]int{
	SubmissionStatusNotSubmitted: 0,
	SubmissionStatusSubmitted:    1,
	SubmissionStatusGraded:       2,
}

// Submission is one student's uploaded answer sheet for one exam.
type Submission struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ExamID        uint           `gorm:"not null;uniqueIndex:idx_submission_exam_student" json:"examId"`
	StudentID     uint           `gorm:"not null;uniqueIndex:idx_submission_exam_student" json:"studentId"`
	Status        string         `gorm:"size:32;not null;default:not_submitted" json:"status"`
	SubmittedAt   *time.Time     `json:"submittedAt"`
	ImageURL      string         `gorm:"size:1024" json:"imageUrl"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	Exam          Exam           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student       Student        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	GradingResult *GradingResult `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"gradingResult,omitempty"`
}

// OwnerID returns the teacher owning the parent exam. The exam must be preloaded.
func (s Submission) OwnerID() uint {
	return s.Exam.UserID
}

// IsGraded reports whether the submission has reached its final stage.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// IsValidSubmissionStatus reports whether status is a known lifecycle value.
func IsValidSubmissionStatus(status string) bool {
	_, ok := submissionStage[status]
	return ok
}

// CanTransition reports whether a submission may move from one status to another.
// Statuses only move forward; staying in place is allowed.
func CanTransition(from, to string) bool {
	fromStage, ok := submissionStage[from]
	if !ok {
		return false
	}
	toStage, ok := submissionStage[to]
	if !ok {
		return false
	}
	return toStage >= fromStage
}
