package dto

import (
	"time"

	"github.com/noah-isme/mathgrader-api/internal/models"
)

// DashboardExam is a recent exam card on the teacher dashboard.
type DashboardExam struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Subject          string    `json:"subject"`
	Date             time.Time `json:"date"`
	TotalStudents    int       `json:"totalStudents"`
	TotalSubmissions int       `json:"totalSubmissions"`
	GradedCount      int       `json:"gradedCount"`
}

// DashboardResponse aggregates the teacher's grading workload.
type DashboardResponse struct {
	TotalExams        int64              `json:"totalExams"`
	TotalStudents     int64              `json:"totalStudents"`
	TotalSubmissions  int64              `json:"totalSubmissions"`
	PendingGrading    int64              `json:"pendingGrading"`
	Graded            int64              `json:"graded"`
	AveragePercentage float64            `json:"averagePercentage"`
	RecentExams       []DashboardExam    `json:"recentExams"`
	RecentActivity    []ActivityResponse `json:"recentActivity"`
	GeneratedAt       time.Time          `json:"generatedAt"`
	Cached            bool               `json:"cached"`
}

// ActivityResponse is a single entry in the activity feed.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entityType"`
	EntityID   *uint                  `json:"entityId"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// NewActivityResponse converts an activity log into its feed entry.
func NewActivityResponse(model models.ActivityLog) ActivityResponse {
	metadata := map[string]interface{}{}
	for key, value := range model.Metadata {
		metadata[key] = value
	}
	return ActivityResponse{
		ID:         model.ID,
		Action:     model.Action,
		EntityType: model.EntityType,
		EntityID:   model.EntityID,
		Metadata:   metadata,
		CreatedAt:  model.CreatedAt,
	}
}

// NewDashboardExam summarises an exam with preloaded students and submissions.
func NewDashboardExam(model models.Exam) DashboardExam {
	graded := 0
	for _, submission := range model.Submissions {
		if submission.IsGraded() {
			graded++
		}
	}
	return DashboardExam{
		ID:               model.ID,
		Title:            model.Title,
		Subject:          model.Subject,
		Date:             model.Date,
		TotalStudents:    len(model.Students),
		TotalSubmissions: len(model.Submissions),
		GradedCount:      graded,
	}
}
