package grader

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Canned feedback attached to each score bucket.
const (
	FeedbackCorrect   = "Correct solution with proper steps shown."
	FeedbackPartial   = "Partially correct. Some steps are missing or incorrect."
	FeedbackIncorrect = "Incorrect solution. Review the concept and try again."
)

type answerFixture struct {
	student string
	correct string
}

var answerFixtures = []answerFixture{
	{student: "x = 5", correct: "x = 5"},
	{student: "y = 3x + 2", correct: "y = 3x + 2"},
	{student: "z = 12", correct: "z = 12"},
	{student: "w = 7", correct: "w = 8"},
	{student: "a = 4, b = 3", correct: "a = 4, b = 3"},
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// MockScorer assigns weighted random scores without inspecting the image.
// It stands in for a real evaluation engine.
type MockScorer struct {
	mu    sync.Mutex
	rng   *rand.Rand
	delay time.Duration
}

// MockOption customises a MockScorer.
type MockOption func(*MockScorer)

// WithRand sets the random source, mainly for deterministic tests.
func WithRand(rng *rand.Rand) MockOption {
	return func(s *MockScorer) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithDelay makes every Score call wait before answering.
func WithDelay(delay time.Duration) MockOption {
	return func(s *MockScorer) {
		if delay > 0 {
			s.delay = delay
		}
	}
}

// NewMockScorer constructs the placeholder scorer.
func NewMockScorer(opts ...MockOption) *MockScorer {
	scorer := &MockScorer{
		rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(scorer)
	}
	return scorer
}

// Score implements Scorer.
func (s *MockScorer) Score(ctx context.Context, req Request) ([]Answer, error) {
	if req.TotalQuestions <= 0 {
		return nil, fmt.Errorf("total questions must be positive, got %d", req.TotalQuestions)
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make([]Answer, 0, req.TotalQuestions)
	for question := 1; question <= req.TotalQuestions; question++ {
		answers = append(answers, s.scoreQuestion(question))
	}

	return answers, nil
}

func (s *MockScorer) scoreQuestion(question int) Answer {
	correctness := s.rng.Float64()

	answer := Answer{
		QuestionNumber: question,
		MaxScore:       PointsPerQuestion,
	}

	switch {
	case correctness > 0.7:
		answer.Score = PointsPerQuestion
		answer.Feedback = FeedbackCorrect
		answer.Confidence = 0.95 + s.rng.Float64()*0.05
	case correctness > 0.4:
		answer.Score = 10 + s.rng.IntN(8)
		answer.Feedback = FeedbackPartial
		answer.Confidence = 0.8 + s.rng.Float64()*0.15
	default:
		answer.Score = s.rng.IntN(8)
		answer.Feedback = FeedbackIncorrect
		answer.Confidence = 0.6 + s.rng.Float64()*0.2
	}

	fixture := answerFixtures[(question-1)%len(answerFixtures)]
	answer.CorrectAnswer = fixture.correct
	answer.StudentAnswer = fixture.student
	if correctness <= 0.7 {
		delta := -1.0
		if s.rng.Float64() > 0.5 {
			delta = 1.0
		}
		answer.StudentAnswer = perturbAnswer(fixture.student, delta)
	}

	return answer
}

// perturbAnswer shifts the number leading the right-hand side of an equation.
// Anything after that number is dropped, so "y = 3x + 2" becomes "y = 4".
func perturbAnswer(answer string, delta float64) string {
	parts := strings.Split(answer, "=")
	if len(parts) < 2 {
		return answer
	}

	match := leadingNumber.FindString(strings.TrimSpace(parts[1]))
	if match == "" {
		return answer
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return answer
	}

	return parts[0] + "= " + strconv.FormatFloat(value+delta, 'f', -1, 64)
}
