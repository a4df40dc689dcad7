package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/mathgrader-api/internal/auth"
	"github.com/noah-isme/mathgrader-api/internal/config"
	"github.com/noah-isme/mathgrader-api/internal/database"
	"github.com/noah-isme/mathgrader-api/internal/handler"
	"github.com/noah-isme/mathgrader-api/internal/middleware"
	"github.com/noah-isme/mathgrader-api/internal/repository"
	"github.com/noah-isme/mathgrader-api/internal/router"
	"github.com/noah-isme/mathgrader-api/internal/service"
	"github.com/noah-isme/mathgrader-api/pkg/grader"
	"github.com/noah-isme/mathgrader-api/web"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testApp struct {
	app *fiber.App
	db  *gorm.DB
}

func setupApp(t *testing.T) testApp {
	t.Helper()

	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())
	sessions, err := auth.NewSessionManager(testSecret, time.Hour, false)
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	students := repository.NewStudentRepository(db)
	exams := repository.NewExamRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	results := repository.NewGradingRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activity := service.NewActivityService(activityRepo, logger)
	dashboard := service.NewDashboardService(exams, students, submissions, results, activity, nil, 0, logger)
	hooks := service.MutationHooks{Activity: activity, Dashboard: dashboard}

	authService, err := service.NewAuthService(users, sessions, validate, bcrypt.MinCost, logger)
	require.NoError(t, err)
	examService := service.NewExamService(exams, students, validate, hooks, logger)
	studentService := service.NewStudentService(students, logger)
	submissionService := service.NewSubmissionService(submissions, exams, students, service.NewSheetUploader(nil, 1, logger), validate, hooks, logger)
	scorer := grader.NewMockScorer(grader.WithRand(rand.New(rand.NewPCG(3, 4))))
	gradingService := service.NewGradingService(submissions, results, scorer, hooks, logger)

	cfg := config.Config{AppName: "MathGrader", AppEnv: "test"}
	app := fiber.New(fiber.Config{
		Views:        web.NewEngine(),
		ViewsLayout:  web.Layout,
		ErrorHandler: middleware.ErrorHandler(logger),
	})
	middleware.Register(app, middleware.Config{Logger: &logger, Sessions: sessions})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, sessions, 100, logger),
		ExamHandler:       handler.NewExamHandler(examService, logger),
		StudentHandler:    handler.NewStudentHandler(studentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboard, logger),
		ActivityHandler:   handler.NewActivityHandler(activity, logger),
		PageHandler:       handler.NewPageHandler(examService, submissionService, dashboard, cfg.AppName, logger),
	})

	return testApp{app: app, db: db}
}

// do sends a request with an optional JSON body and session cookie.
func (a testApp) do(t *testing.T, method, path string, body interface{}, session *http.Cookie) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if session != nil {
		req.AddCookie(session)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// signup registers a teacher and returns its session cookie.
func (a testApp) signup(t *testing.T, email string) *http.Cookie {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Teacher " + email,
		"email":    email,
		"password": "secret-pass",
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return sessionCookie(t, resp)
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie
		}
	}
	t.Fatalf("response did not set the %s cookie", auth.CookieName)
	return nil
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func createExam(t *testing.T, a testApp, session *http.Cookie, students ...string) map[string]interface{} {
	t.Helper()
	roster := make([]map[string]string, 0, len(students))
	for _, name := range students {
		roster = append(roster, map[string]string{"name": name})
	}
	resp := a.do(t, http.MethodPost, "/api/exams", map[string]interface{}{
		"title":          "Algebra Quiz 1",
		"subject":        "Algebra",
		"date":           "2025-03-10",
		"totalQuestions": 5,
		"maxScore":       100,
		"students":       roster,
	}, session)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode(t, resp)["exam"].(map[string]interface{})
}

func idOf(t *testing.T, value interface{}) uint {
	t.Helper()
	number, ok := value.(float64)
	require.True(t, ok, "expected numeric id, got %T", value)
	return uint(number)
}
