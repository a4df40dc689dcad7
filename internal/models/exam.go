package models

import "time"

// Exam is a math assignment created by a teacher.
type Exam struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Title          string       `gorm:"size:255;not null" json:"title"`
	Subject        string       `gorm:"size:255;not null" json:"subject"`
	Date           time.Time    `gorm:"not null" json:"date"`
	Description    string       `gorm:"type:text" json:"description"`
	TotalQuestions int          `gorm:"not null" json:"totalQuestions"`
	MaxScore       int          `gorm:"not null" json:"maxScore"`
	UserID         uint         `gorm:"not null;index" json:"userId"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	User           User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Students       []Student    `gorm:"many2many:exam_students;" json:"students"`
	Submissions    []Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"submissions"`
}

// OwnerID returns the teacher that owns the exam.
func (e Exam) OwnerID() uint {
	return e.UserID
}
