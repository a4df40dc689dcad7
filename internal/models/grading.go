package models

import "time"

// GradingResult is the scored outcome of grading a single submission.
type GradingResult struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	SubmissionID     uint           `gorm:"not null;uniqueIndex" json:"submissionId"`
	TotalScore       int            `gorm:"not null" json:"totalScore"`
	MaxPossibleScore int            `gorm:"not null" json:"maxPossibleScore"`
	GradedAt         time.Time      `gorm:"not null" json:"gradedAt"`
	CreatedAt        time.Time      `json:"createdAt"`
	Answers          []GradedAnswer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers"`
}

// GradedAnswer holds one question's score, feedback and confidence.
type GradedAnswer struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	GradingResultID uint    `gorm:"not null;index" json:"gradingResultId"`
	QuestionNumber  int     `gorm:"not null" json:"questionNumber"`
	StudentAnswer   string  `gorm:"size:512" json:"studentAnswer"`
	CorrectAnswer   string  `gorm:"size:512" json:"correctAnswer"`
	Score           int     `gorm:"not null" json:"score"`
	MaxScore        int     `gorm:"not null" json:"maxScore"`
	Confidence      float64 `gorm:"not null" json:"confidence"`
	Feedback        string  `gorm:"type:text" json:"feedback"`
}
