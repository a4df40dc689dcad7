package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/events"
	"github.com/noah-isme/mathgrader-api/internal/models"
)

func newExamFixture(t *testing.T) (ExamService, testEnv, *recordingPublisher, *invalidationCounter) {
	t.Helper()
	env := newTestEnv(t)
	publisher := &recordingPublisher{}
	dashboard := &invalidationCounter{}
	hooks := MutationHooks{
		Activity:  NewActivityService(env.activity, zerolog.Nop()),
		Events:    publisher,
		Dashboard: dashboard,
	}
	return NewExamService(env.exams, env.students, env.validate, hooks, zerolog.Nop()), env, publisher, dashboard
}

func examPayload(students ...dto.StudentInput) dto.ExamCreateRequest {
	return dto.ExamCreateRequest{
		Title:          "Algebra Quiz 1",
		Subject:        "Algebra",
		Date:           "2025-03-10",
		Description:    "Linear equations",
		TotalQuestions: 5,
		MaxScore:       100,
		Students:       students,
	}
}

func TestExamServiceCreateConnectsAndCreatesStudents(t *testing.T) {
	svc, env, _, dashboard := newExamFixture(t)
	ctx := context.Background()
	teacher := env.teacher(t, "teacher@example.com")

	existing := models.Student{Name: "John Doe"}
	require.NoError(t, env.students.Create(ctx, &existing))

	created, err := svc.Create(ctx, teacher, examPayload(
		dto.StudentInput{ID: &existing.ID},
		dto.StudentInput{Name: "Jane Smith"},
		dto.StudentInput{ID: &existing.ID},
	))
	require.NoError(t, err)
	require.Equal(t, teacher.ID, created.UserID)
	require.Equal(t, 2025, created.Date.Year())
	require.Len(t, created.Students, 2)
	require.Equal(t, []uint{teacher.ID}, dashboard.owners)

	var students int64
	require.NoError(t, env.db.Model(&models.Student{}).Count(&students).Error)
	require.Equal(t, int64(2), students)

	listed, err := svc.List(ctx, teacher)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestExamServiceCreateRejectsInvalidInput(t *testing.T) {
	svc, env, _, _ := newExamFixture(t)
	ctx := context.Background()
	teacher := env.teacher(t, "teacher@example.com")

	payload := examPayload()
	payload.Date = "next tuesday"
	_, err := svc.Create(ctx, teacher, payload)
	require.ErrorIs(t, err, ErrInvalidDate)

	payload = examPayload()
	payload.Title = "<b></b>"
	_, err = svc.Create(ctx, teacher, payload)
	require.ErrorIs(t, err, ErrMissingFields)

	missing := uint(999)
	_, err = svc.Create(ctx, teacher, examPayload(dto.StudentInput{ID: &missing}))
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestExamServiceRejectsOtherTeachers(t *testing.T) {
	svc, env, _, _ := newExamFixture(t)
	ctx := context.Background()
	owner := env.teacher(t, "owner@example.com")
	intruder := env.teacher(t, "intruder@example.com")

	created, err := svc.Create(ctx, owner, examPayload())
	require.NoError(t, err)

	_, err = svc.Get(ctx, intruder, created.ID)
	require.ErrorIs(t, err, ErrForbidden)

	update := dto.ExamUpdateRequest{Title: "Hijacked", Subject: "Algebra", Date: "2025-03-11", TotalQuestions: 5, MaxScore: 100}
	_, err = svc.Update(ctx, intruder, created.ID, update)
	require.ErrorIs(t, err, ErrForbidden)

	require.ErrorIs(t, svc.Delete(ctx, intruder, created.ID), ErrForbidden)

	stored, err := svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Algebra Quiz 1", stored.Title)

	_, err = svc.Get(ctx, owner, created.ID+100)
	require.ErrorIs(t, err, ErrExamNotFound)
}

func TestExamServiceUpdateReplacesRoster(t *testing.T) {
	svc, env, _, _ := newExamFixture(t)
	ctx := context.Background()
	teacher := env.teacher(t, "teacher@example.com")

	created, err := svc.Create(ctx, teacher, examPayload(dto.StudentInput{Name: "John"}, dto.StudentInput{Name: "Jane"}))
	require.NoError(t, err)
	require.Len(t, created.Students, 2)

	update := dto.ExamUpdateRequest{
		Title:          "Algebra Quiz 1 (revised)",
		Subject:        "Algebra",
		Date:           "2025-03-12T09:30",
		TotalQuestions: 6,
		MaxScore:       120,
	}
	kept, err := svc.Update(ctx, teacher, created.ID, update)
	require.NoError(t, err)
	require.Equal(t, "Algebra Quiz 1 (revised)", kept.Title)
	require.Len(t, kept.Students, 2)

	var johnID uint
	for _, student := range kept.Students {
		if student.Name == "John" {
			johnID = student.ID
		}
	}
	require.NotZero(t, johnID)

	mixed := []dto.StudentInput{{ID: &johnID}, {Name: "Emily"}}
	update.Students = &mixed
	replaced, err := svc.Update(ctx, teacher, created.ID, update)
	require.NoError(t, err)
	names := make([]string, 0, len(replaced.Students))
	for _, student := range replaced.Students {
		names = append(names, student.Name)
	}
	require.ElementsMatch(t, []string{"John", "Emily"}, names)

	empty := []dto.StudentInput{}
	update.Students = &empty
	cleared, err := svc.Update(ctx, teacher, created.ID, update)
	require.NoError(t, err)
	require.Empty(t, cleared.Students)
	require.Equal(t, 6, cleared.TotalQuestions)
}

func TestExamServiceDeleteCascades(t *testing.T) {
	svc, env, publisher, _ := newExamFixture(t)
	ctx := context.Background()
	teacher := env.teacher(t, "teacher@example.com")

	created, err := svc.Create(ctx, teacher, examPayload(dto.StudentInput{Name: "John"}))
	require.NoError(t, err)

	exam, err := env.exams.GetWithDetails(ctx, created.ID)
	require.NoError(t, err)
	env.submission(t, exam, exam.Students[0].ID, models.SubmissionStatusSubmitted)

	require.NoError(t, svc.Delete(ctx, teacher, created.ID))

	_, err = svc.Get(ctx, teacher, created.ID)
	require.ErrorIs(t, err, ErrExamNotFound)
	require.ErrorIs(t, svc.Delete(ctx, teacher, created.ID), ErrExamNotFound)

	var submissions int64
	require.NoError(t, env.db.Model(&models.Submission{}).Count(&submissions).Error)
	require.Zero(t, submissions)
	require.Contains(t, publisher.events, events.ExamDeleted)
}
