package dto

import (
	"time"

	"github.com/noah-isme/mathgrader-api/internal/models"
)

// SubmissionCreateRequest describes the JSON or multipart payload for uploading an answer sheet.
type SubmissionCreateRequest struct {
	ExamID    uint   `json:"examId" form:"examId" validate:"required,gt=0"`
	StudentID uint   `json:"studentId" form:"studentId" validate:"required,gt=0"`
	ImageURL  string `json:"imageUrl" form:"imageUrl" validate:"max=1024"`
}

// SubmissionUpdateRequest changes a submission's status or image. Empty fields keep the stored value.
type SubmissionUpdateRequest struct {
	Status   string `json:"status" validate:"omitempty,oneof=not_submitted submitted graded"`
	ImageURL string `json:"imageUrl" validate:"max=1024"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID            uint                   `json:"id"`
	ExamID        uint                   `json:"examId"`
	StudentID     uint                   `json:"studentId"`
	Status        string                 `json:"status"`
	SubmittedAt   *time.Time             `json:"submittedAt"`
	ImageURL      string                 `json:"imageUrl"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
	Exam          *ExamLite              `json:"exam,omitempty"`
	Student       *StudentLite           `json:"student,omitempty"`
	GradingResult *GradingResultResponse `json:"gradingResult"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:          model.ID,
		ExamID:      model.ExamID,
		StudentID:   model.StudentID,
		Status:      model.Status,
		SubmittedAt: model.SubmittedAt,
		ImageURL:    model.ImageURL,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if model.Exam.ID != 0 {
		exam := NewExamLite(model.Exam)
		response.Exam = &exam
	}
	if model.Student.ID != 0 {
		student := NewStudentLite(model.Student)
		response.Student = &student
	}
	if model.GradingResult != nil {
		result := NewGradingResultResponse(*model.GradingResult)
		response.GradingResult = &result
	}

	return response
}
