package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrExamNotFound indicates the exam does not exist.
	ErrExamNotFound = errors.New("exam not found")
	// ErrStudentNotFound indicates the student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrSubmissionNotFound indicates the submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrAlreadyGraded is returned when a grading result already exists for a submission.
	ErrAlreadyGraded = errors.New("submission already graded")
	// ErrSubmissionLocked is returned when re-uploading an answer sheet that was graded.
	ErrSubmissionLocked = errors.New("submission already graded")
	// ErrSubmissionNotGraded is returned when analysing a submission without a result.
	ErrSubmissionNotGraded = errors.New("submission has not been graded")
	// ErrInvalidStatusTransition is returned when a status update would move backwards.
	ErrInvalidStatusTransition = errors.New("invalid submission status transition")
	// ErrInvalidDate is returned when an exam date cannot be parsed.
	ErrInvalidDate = errors.New("invalid exam date")
	// ErrMissingFields is returned when required fields are empty after sanitisation.
	ErrMissingFields = errors.New("missing required fields")
	// ErrEmailTaken indicates a registration with an existing email.
	ErrEmailTaken = errors.New("user already exists")
	// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrStorageUnavailable is returned when an upload arrives but no storage is configured.
	ErrStorageUnavailable = errors.New("file storage is not configured")
)

// isDuplicateKey reports whether err is a unique constraint violation. Drivers
// without error translation are matched on their message.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint") || strings.Contains(message, "duplicate key")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
