package handler

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/middleware"
	"github.com/noah-isme/mathgrader-api/internal/service"
)

// PageHandler renders the server-side teacher pages. Forms on these pages call
// the JSON API from the browser.
type PageHandler struct {
	exams       service.ExamService
	submissions service.SubmissionService
	dashboard   service.DashboardService
	appName     string
	logger      zerolog.Logger
}

// NewPageHandler constructs the page handler.
func NewPageHandler(exams service.ExamService, submissions service.SubmissionService, dashboard service.DashboardService, appName string, logger zerolog.Logger) *PageHandler {
	return &PageHandler{
		exams:       exams,
		submissions: submissions,
		dashboard:   dashboard,
		appName:     appName,
		logger:      logger.With().Str("component", "page_handler").Logger(),
	}
}

// Register attaches page routes to the application root.
func (h *PageHandler) Register(router fiber.Router) {
	router.Get("/", h.index)
	router.Get("/auth/login", h.login)
	router.Get("/auth/register", h.register)

	dashboard := router.Group("/dashboard")
	dashboard.Get("", h.dashboardPage)
	dashboard.Get("/exams", h.examList)
	dashboard.Get("/exams/create", h.examCreate)
	dashboard.Get("/exams/:id", h.examDetail)
	dashboard.Get("/exams/:id/upload", h.examUpload)
	dashboard.Get("/exams/:id/grade", h.examGrade)
}

func (h *PageHandler) render(c *fiber.Ctx, status int, name, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = title
	data["AppName"] = h.appName
	if user, ok := middleware.SessionUserFromLocals(c); ok {
		data["User"] = user
	}
	return c.Status(status).Render(name, data)
}

func (h *PageHandler) renderError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Something went wrong while loading this page."
	switch {
	case errors.Is(err, service.ErrExamNotFound), errors.Is(err, service.ErrSubmissionNotFound), errors.Is(err, errInvalidIdentifier):
		status = fiber.StatusNotFound
		message = "The page you were looking for could not be found."
	case errors.Is(err, service.ErrForbidden):
		status = fiber.StatusForbidden
		message = "You do not have access to this exam."
	default:
		requestLogger(h.logger, c).Error().Err(err).Str("path", c.Path()).Msg("failed to render page")
	}
	return h.render(c, status, "error", "Error", fiber.Map{"Status": status, "Message": message})
}

func (h *PageHandler) index(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, "index", "Welcome", nil)
}

func (h *PageHandler) login(c *fiber.Ctx) error {
	if _, ok := middleware.SessionUserFromLocals(c); ok {
		return c.Redirect("/dashboard", fiber.StatusFound)
	}
	return h.render(c, fiber.StatusOK, "login", "Sign in", fiber.Map{"CallbackURL": safeCallback(c.Query("callbackUrl"))})
}

func (h *PageHandler) register(c *fiber.Ctx) error {
	if _, ok := middleware.SessionUserFromLocals(c); ok {
		return c.Redirect("/dashboard", fiber.StatusFound)
	}
	return h.render(c, fiber.StatusOK, "register", "Create account", nil)
}

func (h *PageHandler) dashboardPage(c *fiber.Ctx) error {
	stats, err := h.dashboard.GetDashboard(withRequestContext(c), actorFromContext(c))
	if err != nil {
		return h.renderError(c, err)
	}
	return h.render(c, fiber.StatusOK, "dashboard", "Dashboard", fiber.Map{"Dashboard": stats})
}

func (h *PageHandler) examList(c *fiber.Ctx) error {
	exams, err := h.exams.List(withRequestContext(c), actorFromContext(c))
	if err != nil {
		return h.renderError(c, err)
	}
	return h.render(c, fiber.StatusOK, "exams", "Exams", fiber.Map{"Exams": exams})
}

func (h *PageHandler) examCreate(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, "exam_create", "Create exam", nil)
}

func (h *PageHandler) examDetail(c *fiber.Ctx) error {
	exam, err := h.loadExam(c)
	if err != nil {
		return h.renderError(c, err)
	}
	return h.render(c, fiber.StatusOK, "exam_detail", exam.Title, fiber.Map{"Exam": exam})
}

func (h *PageHandler) examUpload(c *fiber.Ctx) error {
	exam, err := h.loadExam(c)
	if err != nil {
		return h.renderError(c, err)
	}
	return h.render(c, fiber.StatusOK, "exam_upload", "Upload answer sheet", fiber.Map{
		"Exam":      exam,
		"StudentID": parseUintValue(c.Query("studentId")),
	})
}

// examGrade shows one submission of the exam, picked by ?submissionId=.
func (h *PageHandler) examGrade(c *fiber.Ctx) error {
	exam, err := h.loadExam(c)
	if err != nil {
		return h.renderError(c, err)
	}

	data := fiber.Map{"Exam": exam}
	if submissionID := parseUintValue(c.Query("submissionId")); submissionID != 0 {
		submission, err := h.submissions.Get(withRequestContext(c), actorFromContext(c), submissionID)
		if err != nil {
			return h.renderError(c, err)
		}
		if submission.ExamID != exam.ID {
			return h.renderError(c, service.ErrSubmissionNotFound)
		}
		data["Submission"] = submission
	}

	return h.render(c, fiber.StatusOK, "exam_grade", "Grade submission", data)
}

func (h *PageHandler) loadExam(c *fiber.Ctx) (dto.ExamResponse, error) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return dto.ExamResponse{}, err
	}
	return h.exams.Get(withRequestContext(c), actorFromContext(c), id)
}

// safeCallback keeps redirects after login on this site.
func safeCallback(raw string) string {
	if raw == "" {
		return "/dashboard"
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.IsAbs() || parsed.Host != "" || !strings.HasPrefix(parsed.Path, "/") || strings.HasPrefix(raw, "//") {
		return "/dashboard"
	}
	return raw
}
