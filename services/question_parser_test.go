package services

import (
	"strings"
	"testing"
)

func TestParseQuestionsParenthesizedOptions(t *testing.T) {
	page := `1. Which planet is known as the Red Planet?
(a) Venus (b) Mars (c) Jupiter (d) Saturn`

	fragments := ParseQuestions(page, "english", 100)
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}

	frag := fragments[0]
	if frag.Number != 1 {
		t.Errorf("expected question number 1, got %d", frag.Number)
	}
	if !strings.Contains(frag.Text, "Red Planet") {
		t.Errorf("unexpected question text: %q", frag.Text)
	}
	expected := [4]string{"Venus", "Mars", "Jupiter", "Saturn"}
	if frag.Options != expected {
		t.Errorf("expected options %v, got %v", expected, frag.Options)
	}
}

func TestParseQuestionsBareLetterOptions(t *testing.T) {
	page := `2) Which river is known as the Sorrow of Bengal?
a) Ganga b) Damodar c) Kosi d) Teesta`

	fragments := ParseQuestions(page, "english", 100)
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}

	frag := fragments[0]
	if frag.Number != 2 {
		t.Errorf("expected question number 2, got %d", frag.Number)
	}
	expected := [4]string{"Ganga", "Damodar", "Kosi", "Teesta"}
	if frag.Options != expected {
		t.Errorf("expected options %v, got %v", expected, frag.Options)
	}
}

func TestParseQuestionsDevanagariOptions(t *testing.T) {
	page := `3. भारत की राजधानी कौन सी है?
(क) मुंबई (ख) दिल्ली (ग) चेन्नई (घ) कोलकाता`

	fragments := ParseQuestions(page, "hindi", 100)
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}

	frag := fragments[0]
	if frag.Script != "hindi" {
		t.Errorf("expected hindi script, got %q", frag.Script)
	}
	expected := [4]string{"मुंबई", "दिल्ली", "चेन्नई", "कोलकाता"}
	if frag.Options != expected {
		t.Errorf("expected options %v, got %v", expected, frag.Options)
	}
}

func TestParseQuestionsSemicolonFallback(t *testing.T) {
	page := `4. Capital of France; London; Paris; Berlin; Madrid`

	fragments := ParseQuestions(page, "english", 100)
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}

	frag := fragments[0]
	if frag.Text != "Capital of France" {
		t.Errorf("unexpected question text: %q", frag.Text)
	}
	expected := [4]string{"London", "Paris", "Berlin", "Madrid"}
	if frag.Options != expected {
		t.Errorf("expected options %v, got %v", expected, frag.Options)
	}
}

// A block no strategy can parse still yields a fragment; the option slots
// stay empty and the merge step deals with them.
func TestParseQuestionsNoOptionsKeepsFragment(t *testing.T) {
	page := `5. Discuss the significance of the 73rd Constitutional Amendment.`

	fragments := ParseQuestions(page, "english", 100)
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}

	frag := fragments[0]
	if frag.Options != [4]string{} {
		t.Errorf("expected empty option slots, got %v", frag.Options)
	}
	if !strings.Contains(frag.Text, "73rd") {
		t.Errorf("unexpected question text: %q", frag.Text)
	}
}

func TestParseQuestionsStripsBoilerplate(t *testing.T) {
	page := `6. Consider the following statements about GST. Select the correct answer
(a) 1 only (b) 2 only (c) Both (d) Neither`

	fragments := ParseQuestions(page, "english", 100)
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}

	frag := fragments[0]
	if strings.Contains(strings.ToLower(frag.Text), "select the correct") {
		t.Errorf("boilerplate not stripped: %q", frag.Text)
	}
	if !strings.Contains(frag.Text, "GST") {
		t.Errorf("question text lost: %q", frag.Text)
	}
}

func TestParseQuestionsMultipleBlocks(t *testing.T) {
	page := `1. First question about history?
(a) Akbar (b) Babur (c) Humayun (d) Jahangir
2. Second question about geography?
(a) Nile (b) Amazon (c) Ganga (d) Volga`

	fragments := ParseQuestions(page, "english", 100)
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}
	if fragments[0].Number != 1 || fragments[1].Number != 2 {
		t.Errorf("unexpected numbers: %d, %d", fragments[0].Number, fragments[1].Number)
	}
	if fragments[1].Options[2] != "Ganga" {
		t.Errorf("expected option C of question 2 to be Ganga, got %q", fragments[1].Options[2])
	}
}

func TestParseQuestionsRejectsOutOfRangeNumbers(t *testing.T) {
	page := `250. A page artifact that looks like a question number but is not.
(a) one (b) two (c) three (d) four`

	fragments := ParseQuestions(page, "english", 100)
	if len(fragments) != 0 {
		t.Errorf("expected no fragments for out-of-range number, got %d", len(fragments))
	}
}

func TestParseQuestionsDropsShortBlocks(t *testing.T) {
	// page footers like "12." followed by nothing must not become questions
	page := "12. \n13. ok\n"

	fragments := ParseQuestions(page, "english", 100)
	if len(fragments) != 0 {
		t.Errorf("expected short blocks dropped, got %d fragments", len(fragments))
	}
}
