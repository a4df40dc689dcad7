package grader

import "fmt"

// Confidence levels shown next to each graded answer.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

const (
	lowConfidenceThreshold     = 0.8
	reviewAverageThreshold     = 0.85
	incorrectScoreRatio        = 0.7
	highConfidenceLevelMinimum = 0.95
)

// ConfidenceAnalysis summarises how much a teacher should trust a grading result.
type ConfidenceAnalysis struct {
	AverageConfidence      float64 `json:"averageConfidence"`
	LowConfidenceQuestions []int   `json:"lowConfidenceQuestions"`
	NeedsReview            bool    `json:"needsReview"`
}

// ConfidenceLevel buckets a confidence value for display.
func ConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= highConfidenceLevelMinimum:
		return ConfidenceHigh
	case confidence >= lowConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// AnalyzeConfidence flags questions graded with low confidence.
func AnalyzeConfidence(answers []Answer) ConfidenceAnalysis {
	analysis := ConfidenceAnalysis{LowConfidenceQuestions: []int{}}
	if len(answers) == 0 {
		return analysis
	}

	var sum float64
	for _, answer := range answers {
		sum += answer.Confidence
		if answer.Confidence < lowConfidenceThreshold {
			analysis.LowConfidenceQuestions = append(analysis.LowConfidenceQuestions, answer.QuestionNumber)
		}
	}

	analysis.AverageConfidence = sum / float64(len(answers))
	analysis.NeedsReview = len(analysis.LowConfidenceQuestions) > 0 || analysis.AverageConfidence < reviewAverageThreshold

	return analysis
}

// FeedbackSummary produces teacher-facing remarks for a graded submission.
func FeedbackSummary(totalScore, maxPossibleScore int, answers []Answer) []string {
	if len(answers) == 0 || maxPossibleScore <= 0 {
		return []string{"No grading data available for feedback."}
	}

	feedback := make([]string, 0, 3)
	percentage := float64(totalScore) / float64(maxPossibleScore) * 100

	switch {
	case percentage >= 90:
		feedback = append(feedback, "Excellent work! The student has a strong understanding of the concepts.")
	case percentage >= 70:
		feedback = append(feedback, "Good work. The student understands most concepts but has some areas to improve.")
	case percentage >= 50:
		feedback = append(feedback, "The student needs additional practice with these concepts.")
	default:
		feedback = append(feedback, "The student is struggling with these concepts and needs significant review.")
	}

	incorrect := 0
	for _, answer := range answers {
		if float64(answer.Score) < float64(answer.MaxScore)*incorrectScoreRatio {
			incorrect++
		}
	}

	if incorrect > 0 {
		feedback = append(feedback, fmt.Sprintf("%d question(s) were answered incorrectly or partially correctly.", incorrect))
		if float64(incorrect) > float64(len(answers))/2 {
			feedback = append(feedback, "Consider reviewing the fundamental concepts covered in this assignment.")
		}
	}

	return feedback
}
