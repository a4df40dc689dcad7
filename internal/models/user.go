package models

import "time"

// Roles a user account may hold.
const (
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User is a teacher account that owns exams.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Role         string    `gorm:"size:32;not null;default:teacher" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Exams        []Exam    `json:"-"`
}
