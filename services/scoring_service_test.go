package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/parikshasetu/api/model"
)

// buildQuestions returns n questions whose correct answer is always A
func buildQuestions(n int) []model.MergedQuestion {
	questions := make([]model.MergedQuestion, n)
	for i := range questions {
		questions[i] = model.MergedQuestion{
			Number:        i + 1,
			CorrectAnswer: "A",
		}
	}
	return questions
}

func TestScoreAnswersFullPaper(t *testing.T) {
	questions := buildQuestions(100)

	// 40 correct, 10 wrong, 50 unattempted
	answers := make(map[int]string)
	for n := 1; n <= 40; n++ {
		answers[n] = "A"
	}
	for n := 41; n <= 50; n++ {
		answers[n] = "B"
	}

	result := ScoreAnswers(questions, answers, 2, 0.66)
	if result.Score != 73.4 {
		t.Errorf("expected score 73.4, got %v", result.Score)
	}
	if result.CorrectCount != 40 || result.WrongCount != 10 || result.SkippedCount != 50 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if result.Accuracy != 80 {
		t.Errorf("expected accuracy 80, got %v", result.Accuracy)
	}
}

func TestScoreAnswersFloorsAtZero(t *testing.T) {
	questions := buildQuestions(5)
	answers := map[int]string{1: "B", 2: "C", 3: "D"}

	result := ScoreAnswers(questions, answers, 2, 0.66)
	if result.Score != 0 {
		t.Errorf("expected floored score 0, got %v", result.Score)
	}
	if result.WrongCount != 3 {
		t.Errorf("expected 3 wrong, got %d", result.WrongCount)
	}
}

// Letters outside A-D are participant noise and must count as unattempted,
// not as wrong answers
func TestScoreAnswersInvalidLetterUnattempted(t *testing.T) {
	questions := buildQuestions(3)
	answers := map[int]string{1: "A", 2: "E", 3: "?"}

	result := ScoreAnswers(questions, answers, 2, 0.66)
	if result.SkippedCount != 2 {
		t.Errorf("expected 2 skipped, got %d", result.SkippedCount)
	}
	if result.WrongCount != 0 {
		t.Errorf("invalid letters must not count wrong, got %d", result.WrongCount)
	}
	if result.Score != 2 {
		t.Errorf("expected score 2, got %v", result.Score)
	}
}

func TestScoreAnswersCaseInsensitive(t *testing.T) {
	questions := buildQuestions(2)
	answers := map[int]string{1: "a", 2: "A"}

	result := ScoreAnswers(questions, answers, 2, 0.66)
	if result.CorrectCount != 2 {
		t.Errorf("lowercase letters must match, got %d correct", result.CorrectCount)
	}
}

func TestScoreAnswersPerfectPaper(t *testing.T) {
	questions := buildQuestions(100)
	answers := make(map[int]string, 100)
	for n := 1; n <= 100; n++ {
		answers[n] = "A"
	}

	result := ScoreAnswers(questions, answers, 2, 0.66)
	if result.Score != 200 {
		t.Errorf("expected full marks 200, got %v", result.Score)
	}
	if result.Accuracy != 100 {
		t.Errorf("expected accuracy 100, got %v", result.Accuracy)
	}
}

func TestScoreAnswersRounding(t *testing.T) {
	questions := buildQuestions(3)
	answers := map[int]string{1: "A", 2: "B", 3: "C"}

	// 2 - 2*0.66 = 0.68 exactly after rounding
	result := ScoreAnswers(questions, answers, 2, 0.66)
	if result.Score != 0.68 {
		t.Errorf("expected 0.68, got %v", result.Score)
	}
}

// Score must never decrease when an answer flips from wrong to correct
func TestScoreAnswersMonotonicity(t *testing.T) {
	questions := buildQuestions(10)

	answers := make(map[int]string)
	for n := 1; n <= 10; n++ {
		answers[n] = "B"
	}

	previous := ScoreAnswers(questions, answers, 2, 0.66).Score
	for n := 1; n <= 10; n++ {
		answers[n] = "A"
		current := ScoreAnswers(questions, answers, 2, 0.66).Score
		if current < previous {
			t.Fatalf("score decreased from %v to %v after correcting question %d",
				previous, current, n)
		}
		previous = current
	}
}

func TestScoreAnswersEmptyPaper(t *testing.T) {
	result := ScoreAnswers(nil, map[int]string{1: "A"}, 2, 0.66)
	if result.Score != 0 || result.Accuracy != 0 {
		t.Errorf("expected zero result for empty paper, got %+v", result)
	}
}

func TestScoreAnswersVariedKey(t *testing.T) {
	letters := []string{"A", "B", "C", "D"}
	questions := make([]model.MergedQuestion, 20)
	answers := make(map[int]string)
	for i := range questions {
		questions[i] = model.MergedQuestion{
			Number:        i + 1,
			CorrectAnswer: letters[i%4],
		}
		answers[i+1] = letters[i%4]
	}

	for name, marks := range map[string]float64{"one_mark": 1, "two_marks": 2} {
		t.Run(fmt.Sprintf("marks_%s", name), func(t *testing.T) {
			result := ScoreAnswers(questions, answers, marks, 0.33)
			if result.Score != marks*20 {
				t.Errorf("expected %v, got %v", marks*20, result.Score)
			}
		})
	}
}

func TestCheckWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	test := &model.Test{StartTime: start, EndTime: end}

	cases := []struct {
		name       string
		at         time.Time
		wantErr    bool
		wantBefore bool
	}{
		{name: "before window opens", at: start.Add(-time.Minute), wantErr: true, wantBefore: true},
		{name: "exactly at start", at: start},
		{name: "inside window", at: start.Add(time.Hour)},
		{name: "exactly at end", at: end},
		{name: "after window closes", at: end.Add(time.Second), wantErr: true, wantBefore: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkWindow(test, tc.at)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var violation *WindowViolationError
			if !errors.As(err, &violation) {
				t.Fatalf("expected WindowViolationError, got %v", err)
			}
			if violation.Before != tc.wantBefore {
				t.Errorf("expected Before=%v, got %v", tc.wantBefore, violation.Before)
			}
			wantBoundary := end
			if tc.wantBefore {
				wantBoundary = start
			}
			if !violation.Boundary.Equal(wantBoundary) {
				t.Errorf("expected boundary %v, got %v", wantBoundary, violation.Boundary)
			}
		})
	}
}
