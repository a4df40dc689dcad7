package dto

import (
	"time"

	"github.com/noah-isme/mathgrader-api/internal/models"
	"github.com/noah-isme/mathgrader-api/pkg/grader"
)

// GradeRequest asks for a submission to be graded.
type GradeRequest struct {
	SubmissionID uint `json:"submissionId" validate:"required,gt=0"`
}

// GradedAnswerResponse is the per-question part of a grading result.
type GradedAnswerResponse struct {
	ID              uint    `json:"id"`
	QuestionNumber  int     `json:"questionNumber"`
	StudentAnswer   string  `json:"studentAnswer"`
	CorrectAnswer   string  `json:"correctAnswer"`
	Score           int     `json:"score"`
	MaxScore        int     `json:"maxScore"`
	Confidence      float64 `json:"confidence"`
	ConfidenceLevel string  `json:"confidenceLevel"`
	Feedback        string  `json:"feedback"`
}

// GradingResultResponse is the full grading result with its answers.
type GradingResultResponse struct {
	ID               uint                   `json:"id"`
	SubmissionID     uint                   `json:"submissionId"`
	TotalScore       int                    `json:"totalScore"`
	MaxPossibleScore int                    `json:"maxPossibleScore"`
	GradedAt         time.Time              `json:"gradedAt"`
	CreatedAt        time.Time              `json:"createdAt"`
	Answers          []GradedAnswerResponse `json:"answers"`
}

// SubmissionAnalysisResponse reports how far a grading result can be trusted.
type SubmissionAnalysisResponse struct {
	SubmissionID           uint                   `json:"submissionId"`
	TotalScore             int                    `json:"totalScore"`
	MaxPossibleScore       int                    `json:"maxPossibleScore"`
	Percentage             float64                `json:"percentage"`
	AverageConfidence      float64                `json:"averageConfidence"`
	LowConfidenceQuestions []int                  `json:"lowConfidenceQuestions"`
	NeedsReview            bool                   `json:"needsReview"`
	Feedback               []string               `json:"feedback"`
	Answers                []GradedAnswerResponse `json:"answers"`
}

// NewGradingResultResponse converts a grading result model into a DTO.
func NewGradingResultResponse(model models.GradingResult) GradingResultResponse {
	response := GradingResultResponse{
		ID:               model.ID,
		SubmissionID:     model.SubmissionID,
		TotalScore:       model.TotalScore,
		MaxPossibleScore: model.MaxPossibleScore,
		GradedAt:         model.GradedAt,
		CreatedAt:        model.CreatedAt,
		Answers:          make([]GradedAnswerResponse, 0, len(model.Answers)),
	}

	for _, answer := range model.Answers {
		response.Answers = append(response.Answers, GradedAnswerResponse{
			ID:              answer.ID,
			QuestionNumber:  answer.QuestionNumber,
			StudentAnswer:   answer.StudentAnswer,
			CorrectAnswer:   answer.CorrectAnswer,
			Score:           answer.Score,
			MaxScore:        answer.MaxScore,
			Confidence:      answer.Confidence,
			ConfidenceLevel: grader.ConfidenceLevel(answer.Confidence),
			Feedback:        answer.Feedback,
		})
	}

	return response
}

// GraderAnswers converts stored answers back into scorer answers for analysis.
func GraderAnswers(answers []models.GradedAnswer) []grader.Answer {
	result := make([]grader.Answer, 0, len(answers))
	for _, answer := range answers {
		result = append(result, grader.Answer{
			QuestionNumber: answer.QuestionNumber,
			StudentAnswer:  answer.StudentAnswer,
			CorrectAnswer:  answer.CorrectAnswer,
			Score:          answer.Score,
			MaxScore:       answer.MaxScore,
			Confidence:     answer.Confidence,
			Feedback:       answer.Feedback,
		})
	}
	return result
}
