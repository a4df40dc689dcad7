package models

import "time"

// Student represents a learner who sits exams and hands in answer sheets.
type Student struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Exams       []Exam       `gorm:"many2many:exam_students;" json:"-"`
	Submissions []Submission `json:"-"`
}
