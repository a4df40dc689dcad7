package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/config"
	"github.com/noah-isme/mathgrader-api/internal/database"
	"github.com/noah-isme/mathgrader-api/internal/repository"
	"github.com/noah-isme/mathgrader-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "seed").Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	seeder := service.NewSeedService(
		repository.NewUserRepository(db),
		repository.NewExamRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewGradingRepository(db),
		cfg.BcryptCost,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	summary, err := seeder.SeedDemo(ctx)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	if summary.Skipped {
		logger.Info().Uint("user_id", summary.UserID).Msg("demo data already present")
		return
	}

	logger.Info().
		Uint("user_id", summary.UserID).
		Uint("exam_id", summary.ExamID).
		Int("students", summary.Students).
		Int("submissions", summary.Submissions).
		Int("results", summary.Results).
		Str("email", service.DemoTeacherEmail).
		Msg("demo data seeded")
}
