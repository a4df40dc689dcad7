package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/mathgrader-api/internal/config"
	"github.com/noah-isme/mathgrader-api/internal/handler"
	"github.com/noah-isme/mathgrader-api/internal/middleware"
	"github.com/noah-isme/mathgrader-api/internal/models"
	"github.com/noah-isme/mathgrader-api/internal/observability"
)

// Dependencies groups router dependencies for registration. Nil handlers are skipped.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	ExamHandler       *handler.ExamHandler
	StudentHandler    *handler.StudentHandler
	SubmissionHandler *handler.SubmissionHandler
	GradingHandler    *handler.GradingHandler
	DashboardHandler  *handler.DashboardHandler
	ActivityHandler   *handler.ActivityHandler
	PageHandler       *handler.PageHandler
	HealthProbes      []handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application. Session resolution
// and the anonymous gate run earlier, in middleware.Register.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}

	teacherOnly := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

	if deps.ExamHandler != nil {
		deps.ExamHandler.Register(api.Group("/exams", teacherOnly))
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students", teacherOnly))
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions", teacherOnly))
	}
	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(api.Group("/grade", teacherOnly))
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", teacherOnly))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity", teacherOnly))
	}

	if deps.PageHandler != nil {
		deps.PageHandler.Register(app)
	}
}
