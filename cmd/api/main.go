package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/auth"
	"github.com/noah-isme/mathgrader-api/internal/config"
	"github.com/noah-isme/mathgrader-api/internal/database"
	"github.com/noah-isme/mathgrader-api/internal/events"
	"github.com/noah-isme/mathgrader-api/internal/handler"
	"github.com/noah-isme/mathgrader-api/internal/middleware"
	"github.com/noah-isme/mathgrader-api/internal/repository"
	"github.com/noah-isme/mathgrader-api/internal/router"
	"github.com/noah-isme/mathgrader-api/internal/service"
	cloud "github.com/noah-isme/mathgrader-api/pkg/cloudinary"
	"github.com/noah-isme/mathgrader-api/pkg/grader"
	"github.com/noah-isme/mathgrader-api/pkg/objectstore"
	"github.com/noah-isme/mathgrader-api/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStartup()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(startupCtx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, dashboard cache disabled")
	}

	var publisher events.Publisher = events.NoopPublisher{}
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
		publisher = events.NewNATSPublisher(natsConn, cfg.NATSSubjectPrefix, middleware.CorrelationIDFromContext, logger)
	}

	storage, err := buildStorage(startupCtx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to configure file storage: %v", err)
	}

	sessions, err := auth.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL, cfg.CookieSecure)
	if err != nil {
		log.Fatalf("failed to create session manager: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	examRepo := repository.NewExamRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradingRepo := repository.NewGradingRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	dashboardService := service.NewDashboardService(examRepo, studentRepo, submissionRepo, gradingRepo, activityService, redisClient, cfg.DashboardCacheTTL, logger)
	hooks := service.MutationHooks{
		Activity:  activityService,
		Events:    publisher,
		Dashboard: dashboardService,
	}

	authService, err := service.NewAuthService(userRepo, sessions, validate, cfg.BcryptCost, logger)
	if err != nil {
		log.Fatalf("failed to create auth service: %v", err)
	}
	examService := service.NewExamService(examRepo, studentRepo, validate, hooks, logger)
	studentService := service.NewStudentService(studentRepo, logger)
	uploader := service.NewSheetUploader(storage, cfg.UploadMaxSizeMB, logger)
	submissionService := service.NewSubmissionService(submissionRepo, examRepo, studentRepo, uploader, validate, hooks, logger)
	gradingService := service.NewGradingService(submissionRepo, gradingRepo, grader.NewMockScorer(grader.WithDelay(cfg.GradingDelay)), hooks, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
		Views:        web.NewEngine(),
		ViewsLayout:  web.Layout,
		ErrorHandler: middleware.ErrorHandler(logger),
	})

	middleware.Register(app, middleware.Config{
		Logger:    &logger,
		Sessions:  sessions,
		AccessLog: !cfg.IsProduction(),
	})
	probes := []handler.HealthProbe{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if redisClient != nil {
		probes = append(probes, handler.HealthProbe{
			Name:  "cache",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, sessions, cfg.AuthRateLimit, logger),
		ExamHandler:       handler.NewExamHandler(examService, logger),
		StudentHandler:    handler.NewStudentHandler(studentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		PageHandler:       handler.NewPageHandler(examService, submissionService, dashboardService, cfg.AppName, logger),
		HealthProbes:      probes,
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Str("storage", cfg.StorageDriver).Msg("http server starting")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

// buildStorage returns the configured answer sheet store, or nil when uploads are disabled.
func buildStorage(ctx context.Context, cfg config.Config, logger zerolog.Logger) (service.FileStorage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverCloudinary:
		return cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
	case config.StorageDriverMinio:
		store, err := objectstore.New(objectstore.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		logger.Warn().Msg("file storage disabled, multipart uploads will be rejected")
		return nil, nil
	}
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
