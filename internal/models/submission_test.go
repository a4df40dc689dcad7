package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransitionOnlyMovesForward(t *testing.T) {
	require.True(t, CanTransition(SubmissionStatusNotSubmitted, SubmissionStatusSubmitted))
	require.True(t, CanTransition(SubmissionStatusSubmitted, SubmissionStatusGraded))
	require.True(t, CanTransition(SubmissionStatusSubmitted, SubmissionStatusSubmitted))
	require.False(t, CanTransition(SubmissionStatusGraded, SubmissionStatusSubmitted))
	require.False(t, CanTransition(SubmissionStatusSubmitted, SubmissionStatusNotSubmitted))
	require.False(t, CanTransition(SubmissionStatusSubmitted, "archived"))
}

func TestSubmissionOwnerComesFromExam(t *testing.T) {
	submission := Submission{ExamID: 3, Exam: Exam{ID: 3, UserID: 42}}
	require.Equal(t, uint(42), submission.OwnerID())
	require.False(t, submission.IsGraded())
}
