package model

import (
	"testing"
	"time"
)

func sampleQuestions() []MergedQuestion {
	return []MergedQuestion{
		{
			Number: 1,
			Question: BilingualText{
				English: "Who was the first President of India?",
				Hindi:   "भारत के प्रथम राष्ट्रपति कौन थे?",
			},
			Options: [4]TestOption{
				{Key: "A", English: "Rajendra Prasad", Hindi: "राजेंद्र प्रसाद"},
				{Key: "B", English: "Nehru", Hindi: "नेहरू"},
				{Key: "C", English: "Patel", Hindi: "पटेल"},
				{Key: "D", English: "Radhakrishnan", Hindi: "राधाकृष्णन"},
			},
			CorrectAnswer: "A",
			Explanation:   "Dr. Rajendra Prasad served 1950-1962.",
		},
	}
}

func TestQuestionsRoundTrip(t *testing.T) {
	test := &Test{}
	if err := test.EncodeQuestions(sampleQuestions()); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := test.DecodeQuestions()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 question, got %d", len(decoded))
	}
	if decoded[0].Question.Hindi != "भारत के प्रथम राष्ट्रपति कौन थे?" {
		t.Errorf("hindi side lost: %q", decoded[0].Question.Hindi)
	}
	if decoded[0].CorrectAnswer != "A" {
		t.Errorf("answer lost: %q", decoded[0].CorrectAnswer)
	}
}

// Participant-facing responses must never leak answers while the test
// window is still open
func TestToResponseWithholdsAnswers(t *testing.T) {
	test := &Test{Title: "Mock Test"}
	if err := test.EncodeQuestions(sampleQuestions()); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	resp, err := test.ToResponse(false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Questions[0].CorrectAnswer != "" {
		t.Errorf("correct answer leaked: %q", resp.Questions[0].CorrectAnswer)
	}
	if resp.Questions[0].Explanation != "" {
		t.Errorf("explanation leaked: %q", resp.Questions[0].Explanation)
	}

	withAnswers, err := test.ToResponse(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withAnswers.Questions[0].CorrectAnswer != "A" {
		t.Errorf("expected answer included, got %q", withAnswers.Questions[0].CorrectAnswer)
	}
}

func TestIsWindowOpen(t *testing.T) {
	now := time.Now()
	test := &Test{
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
	}

	if !test.IsWindowOpen(now) {
		t.Error("expected window open")
	}
	if test.IsWindowOpen(now.Add(-2 * time.Hour)) {
		t.Error("expected window closed before start")
	}
	if test.IsWindowOpen(now.Add(2 * time.Hour)) {
		t.Error("expected window closed after end")
	}
}
