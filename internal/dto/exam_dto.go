package dto

import (
	"time"

	"github.com/noah-isme/mathgrader-api/internal/models"
)

// ExamCreateRequest is the payload for creating an exam.
type ExamCreateRequest struct {
	Title          string         `json:"title" validate:"required,max=255"`
	Subject        string         `json:"subject" validate:"required,max=255"`
	Date           string         `json:"date" validate:"required"`
	Description    string         `json:"description" validate:"max=5000"`
	TotalQuestions int            `json:"totalQuestions" validate:"required,gt=0,lte=200"`
	MaxScore       int            `json:"maxScore" validate:"required,gt=0"`
	Students       []StudentInput `json:"students" validate:"omitempty,dive"`
}

// ExamUpdateRequest replaces an exam's fields. A nil Students keeps the roster;
// a non-nil one, even empty, replaces it entirely.
type ExamUpdateRequest struct {
	Title          string          `json:"title" validate:"required,max=255"`
	Subject        string          `json:"subject" validate:"required,max=255"`
	Date           string          `json:"date" validate:"required"`
	Description    string          `json:"description" validate:"max=5000"`
	TotalQuestions int             `json:"totalQuestions" validate:"required,gt=0,lte=200"`
	MaxScore       int             `json:"maxScore" validate:"required,gt=0"`
	Students       *[]StudentInput `json:"students" validate:"omitempty,dive"`
}

// GradingSummary is the short form of a grading result used in listings.
type GradingSummary struct {
	ID               uint      `json:"id"`
	TotalScore       int       `json:"totalScore"`
	MaxPossibleScore int       `json:"maxPossibleScore"`
	GradedAt         time.Time `json:"gradedAt"`
}

// SubmissionSummary is the short form of a submission used inside exam payloads.
type SubmissionSummary struct {
	ID            uint            `json:"id"`
	Status        string          `json:"status"`
	SubmittedAt   *time.Time      `json:"submittedAt"`
	Student       StudentLite     `json:"student"`
	GradingResult *GradingSummary `json:"gradingResult"`
}

// ExamResponse is returned to API clients when viewing exams.
type ExamResponse struct {
	ID             uint                `json:"id"`
	Title          string              `json:"title"`
	Subject        string              `json:"subject"`
	Date           time.Time           `json:"date"`
	Description    string              `json:"description"`
	TotalQuestions int                 `json:"totalQuestions"`
	MaxScore       int                 `json:"maxScore"`
	UserID         uint                `json:"userId"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
	Students       []StudentLite       `json:"students"`
	Submissions    []SubmissionSummary `json:"submissions"`
}

// ExamLite summarizes an exam inside submission payloads.
type ExamLite struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Subject        string    `json:"subject"`
	Date           time.Time `json:"date"`
	TotalQuestions int       `json:"totalQuestions"`
	MaxScore       int       `json:"maxScore"`
	UserID         uint      `json:"userId"`
}

// NewExamResponse converts an exam model into a DTO.
func NewExamResponse(model models.Exam) ExamResponse {
	response := ExamResponse{
		ID:             model.ID,
		Title:          model.Title,
		Subject:        model.Subject,
		Date:           model.Date,
		Description:    model.Description,
		TotalQuestions: model.TotalQuestions,
		MaxScore:       model.MaxScore,
		UserID:         model.UserID,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
		Students:       NewStudentLiteSlice(model.Students),
		Submissions:    make([]SubmissionSummary, 0, len(model.Submissions)),
	}

	for _, submission := range model.Submissions {
		summary := SubmissionSummary{
			ID:          submission.ID,
			Status:      submission.Status,
			SubmittedAt: submission.SubmittedAt,
			Student:     NewStudentLite(submission.Student),
		}
		if submission.GradingResult != nil {
			summary.GradingResult = &GradingSummary{
				ID:               submission.GradingResult.ID,
				TotalScore:       submission.GradingResult.TotalScore,
				MaxPossibleScore: submission.GradingResult.MaxPossibleScore,
				GradedAt:         submission.GradingResult.GradedAt,
			}
		}
		response.Submissions = append(response.Submissions, summary)
	}

	return response
}

// NewExamResponseSlice converts exam models into DTOs.
func NewExamResponseSlice(exams []models.Exam) []ExamResponse {
	responses := make([]ExamResponse, 0, len(exams))
	for _, exam := range exams {
		responses = append(responses, NewExamResponse(exam))
	}
	return responses
}

// NewExamLite converts an exam model into its summary.
func NewExamLite(model models.Exam) ExamLite {
	return ExamLite{
		ID:             model.ID,
		Title:          model.Title,
		Subject:        model.Subject,
		Date:           model.Date,
		TotalQuestions: model.TotalQuestions,
		MaxScore:       model.MaxScore,
		UserID:         model.UserID,
	}
}
