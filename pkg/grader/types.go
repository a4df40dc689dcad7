// Package grader defines the scoring strategy used to grade exam submissions.
package grader

import "context"

// PointsPerQuestion is the maximum score awarded to a single question.
const PointsPerQuestion = 20

// Request describes the submission handed to a scorer.
type Request struct {
	SubmissionID   uint
	ImageURL       string
	TotalQuestions int
}

// Answer is the scored outcome for one question.
type Answer struct {
	QuestionNumber int
	StudentAnswer  string
	CorrectAnswer  string
	Score          int
	MaxScore       int
	Confidence     float64
	Feedback       string
}

// Scorer produces per-question scores for a submission.
type Scorer interface {
	Score(ctx context.Context, req Request) ([]Answer, error)
}

// Totals sums the awarded and maximum scores of the provided answers.
func Totals(answers []Answer) (total, max int) {
	for _, answer := range answers {
		total += answer.Score
		max += answer.MaxScore
	}
	return total, max
}
