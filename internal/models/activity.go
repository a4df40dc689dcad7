package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity actions recorded for the teacher dashboard.
const (
	ActivityExamCreated        = "exam.created"
	ActivityExamUpdated        = "exam.updated"
	ActivityExamDeleted        = "exam.deleted"
	ActivitySubmissionUploaded = "submission.uploaded"
	ActivitySubmissionUpdated  = "submission.updated"
	ActivitySubmissionDeleted  = "submission.deleted"
	ActivitySubmissionGraded   = "submission.graded"
)

// ActivityLog captures auditable events triggered by teachers.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null;index" json:"actorId"`
	ActorRole  string            `gorm:"size:32;not null" json:"actorRole"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entityType"`
	EntityID   *uint             `json:"entityId"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"createdAt"`
}
