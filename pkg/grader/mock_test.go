package grader

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMockScorerProducesOneAnswerPerQuestion(t *testing.T) {
	scorer := NewMockScorer(WithRand(rand.New(rand.NewPCG(1, 2))))

	answers, err := scorer.Score(context.Background(), Request{SubmissionID: 1, TotalQuestions: 5})
	require.NoError(t, err)
	require.Len(t, answers, 5)

	total, max := Totals(answers)
	require.Equal(t, 100, max)
	require.GreaterOrEqual(t, total, 0)
	require.LessOrEqual(t, total, 100)

	for i, answer := range answers {
		require.Equal(t, i+1, answer.QuestionNumber)
		require.Equal(t, PointsPerQuestion, answer.MaxScore)
		require.Equal(t, answerFixtures[i%len(answerFixtures)].correct, answer.CorrectAnswer)
	}
}

func TestMockScorerBucketsAreConsistent(t *testing.T) {
	scorer := NewMockScorer(WithRand(rand.New(rand.NewPCG(42, 7))))

	answers, err := scorer.Score(context.Background(), Request{TotalQuestions: 500})
	require.NoError(t, err)

	seen := map[string]int{}
	for _, answer := range answers {
		fixture := answerFixtures[(answer.QuestionNumber-1)%len(answerFixtures)]
		seen[answer.Feedback]++

		switch answer.Feedback {
		case FeedbackCorrect:
			require.Equal(t, 20, answer.Score)
			require.GreaterOrEqual(t, answer.Confidence, 0.95)
			require.Less(t, answer.Confidence, 1.0)
			require.Equal(t, fixture.student, answer.StudentAnswer)
		case FeedbackPartial:
			require.GreaterOrEqual(t, answer.Score, 10)
			require.LessOrEqual(t, answer.Score, 17)
			require.GreaterOrEqual(t, answer.Confidence, 0.8)
			require.Less(t, answer.Confidence, 0.95)
			require.NotEqual(t, fixture.student, answer.StudentAnswer)
		case FeedbackIncorrect:
			require.GreaterOrEqual(t, answer.Score, 0)
			require.LessOrEqual(t, answer.Score, 7)
			require.GreaterOrEqual(t, answer.Confidence, 0.6)
			require.Less(t, answer.Confidence, 0.8)
			require.NotEqual(t, fixture.student, answer.StudentAnswer)
		default:
			t.Fatalf("unexpected feedback %q", answer.Feedback)
		}
	}

	require.Len(t, seen, 3)
}

func TestMockScorerRejectsEmptyExam(t *testing.T) {
	scorer := NewMockScorer()

	_, err := scorer.Score(context.Background(), Request{TotalQuestions: 0})
	require.Error(t, err)
}

func TestMockScorerDelayHonoursCancellation(t *testing.T) {
	scorer := NewMockScorer(WithDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scorer.Score(ctx, Request{TotalQuestions: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPerturbAnswer(t *testing.T) {
	require.Equal(t, "x = 6", perturbAnswer("x = 5", 1))
	require.Equal(t, "w = 6", perturbAnswer("w = 7", -1))
	require.Equal(t, "y = 4", perturbAnswer("y = 3x + 2", 1))
	require.Equal(t, "a = 3", perturbAnswer("a = 4, b = 3", -1))
	require.Equal(t, "no equation", perturbAnswer("no equation", 1))
	require.Equal(t, "q = n", perturbAnswer("q = n", 1))
}
