package dto

import "github.com/noah-isme/mathgrader-api/internal/models"

// StudentLite summarizes a student inside exam and submission payloads.
type StudentLite struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// StudentInput references an existing student by id or names a new one.
type StudentInput struct {
	ID   *uint  `json:"id"`
	Name string `json:"name" validate:"required_without=ID,max=255"`
}

// NewStudentLite converts a student model into its summary.
func NewStudentLite(model models.Student) StudentLite {
	return StudentLite{ID: model.ID, Name: model.Name}
}

// NewStudentLiteSlice converts student models into summaries.
func NewStudentLiteSlice(students []models.Student) []StudentLite {
	result := make([]StudentLite, 0, len(students))
	for _, student := range students {
		result = append(result, NewStudentLite(student))
	}
	return result
}
