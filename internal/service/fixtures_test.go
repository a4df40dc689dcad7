package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/mathgrader-api/internal/database"
	"github.com/noah-isme/mathgrader-api/internal/models"
	"github.com/noah-isme/mathgrader-api/internal/repository"
	"github.com/noah-isme/mathgrader-api/pkg/grader"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

type testEnv struct {
	db          *gorm.DB
	validate    *validator.Validate
	users       repository.UserRepository
	students    repository.StudentRepository
	exams       repository.ExamRepository
	submissions repository.SubmissionRepository
	results     repository.GradingRepository
	activity    repository.ActivityLogRepository
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return testEnv{
		db:          db,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		users:       repository.NewUserRepository(db),
		students:    repository.NewStudentRepository(db),
		exams:       repository.NewExamRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		results:     repository.NewGradingRepository(db),
		activity:    repository.NewActivityLogRepository(db),
	}
}

func (e testEnv) teacher(t *testing.T, email string) Actor {
	t.Helper()
	user := models.User{Email: email, Name: "Teacher", PasswordHash: "hash", Role: models.RoleTeacher}
	require.NoError(t, e.users.Create(context.Background(), &user))
	return Actor{ID: user.ID, Role: user.Role}
}

func (e testEnv) exam(t *testing.T, owner Actor, title string, studentNames ...string) models.Exam {
	t.Helper()
	exam := models.Exam{
		Title:          title,
		Subject:        "Algebra",
		Date:           time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		TotalQuestions: 5,
		MaxScore:       100,
		UserID:         owner.ID,
	}
	for _, name := range studentNames {
		exam.Students = append(exam.Students, models.Student{Name: name})
	}
	require.NoError(t, e.exams.Create(context.Background(), &exam))
	return exam
}

func (e testEnv) submission(t *testing.T, exam models.Exam, studentID uint, status string) models.Submission {
	t.Helper()
	now := time.Now().UTC()
	submission := models.Submission{
		ExamID:      exam.ID,
		StudentID:   studentID,
		Status:      status,
		SubmittedAt: &now,
		ImageURL:    "https://cdn.example.com/sheet.png",
	}
	require.NoError(t, e.submissions.Create(context.Background(), &submission))
	return submission
}

type memoryStorage struct {
	mu    sync.Mutex
	names []string
	data  map[string][]byte
	err   error
}

func (m *memoryStorage) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.names = append(m.names, name)
	m.data[name] = body
	return "https://cdn.example.com/" + name, nil
}

// fixedScorer returns the same answers for every request.
type fixedScorer struct {
	answers []grader.Answer
	calls   int
}

func (f *fixedScorer) Score(ctx context.Context, req grader.Request) ([]grader.Answer, error) {
	f.calls++
	return f.answers, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

type invalidationCounter struct {
	owners []uint
}

func (c *invalidationCounter) Invalidate(ctx context.Context, ownerID uint) {
	c.owners = append(c.owners, ownerID)
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf("form-data; name=\"file\"; filename=%q", filename)},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
