package model

import (
	"testing"

	"gorm.io/datatypes"
)

func TestAttemptAnswersRoundTrip(t *testing.T) {
	attempt := &Attempt{}
	answers := map[int]string{1: "A", 57: "c", 100: "D"}

	if err := attempt.EncodeAnswers(answers); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := attempt.DecodeAnswers()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != len(answers) {
		t.Fatalf("expected %d answers, got %d", len(answers), len(decoded))
	}
	for number, letter := range answers {
		if decoded[number] != letter {
			t.Errorf("question %d: expected %q, got %q", number, letter, decoded[number])
		}
	}
}

func TestAttemptDecodeAnswersSkipsMalformedKeys(t *testing.T) {
	attempt := &Attempt{
		Answers: datatypes.JSON(`{"1":"A","banana":"B","3":"C"}`),
	}

	decoded, err := attempt.DecodeAnswers()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("expected malformed key skipped, got %v", decoded)
	}
	if decoded[1] != "A" || decoded[3] != "C" {
		t.Errorf("valid keys lost: %v", decoded)
	}
}

func TestAttemptDecodeAnswersEmpty(t *testing.T) {
	attempt := &Attempt{}

	decoded, err := attempt.DecodeAnswers()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("expected empty map, got %v", decoded)
	}
}
