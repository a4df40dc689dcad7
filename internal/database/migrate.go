package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/mathgrader-api/internal/models"
)

// Migrate creates or updates the relational schema for every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Exam{},
		&models.Submission{},
		&models.GradingResult{},
		&models.GradedAnswer{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
