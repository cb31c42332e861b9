package services

import (
	"strings"
	"testing"
)

func TestSplitScriptsPureEnglish(t *testing.T) {
	text := "Which article of the Constitution deals with the Election Commission?"

	english, hindi := SplitScripts(text)
	if english != text {
		t.Errorf("expected full text in english channel, got %q", english)
	}
	if hindi != "" {
		t.Errorf("expected empty hindi channel, got %q", hindi)
	}
}

func TestSplitScriptsPureHindi(t *testing.T) {
	text := "संविधान का कौन सा अनुच्छेद निर्वाचन आयोग से संबंधित है?"

	english, hindi := SplitScripts(text)
	if hindi != text {
		t.Errorf("expected full text in hindi channel, got %q", hindi)
	}
	if english != "" {
		t.Errorf("expected empty english channel, got %q", english)
	}
}

func TestSplitScriptsMixed(t *testing.T) {
	text := "What is the capital of India? भारत की राजधानी क्या है?"

	english, hindi := SplitScripts(text)
	if !strings.Contains(english, "capital of India") {
		t.Errorf("english channel missing question: %q", english)
	}
	if strings.ContainsRune(english, 'भ') {
		t.Errorf("english channel contains Devanagari: %q", english)
	}
	if !strings.Contains(hindi, "राजधानी") {
		t.Errorf("hindi channel missing question: %q", hindi)
	}
	if strings.Contains(hindi, "capital") {
		t.Errorf("hindi channel contains Latin words: %q", hindi)
	}
}

// Splitting a channel's output again must return it unchanged: the
// extraction pipeline may pass the same page through segmentation twice.
func TestSplitScriptsIdempotent(t *testing.T) {
	text := "Who wrote the national anthem? राष्ट्रगान किसने लिखा? Rabindranath Tagore"

	english1, hindi1 := SplitScripts(text)

	english2, rest1 := SplitScripts(english1)
	if english2 != english1 || rest1 != "" {
		t.Errorf("english channel not stable: %q -> (%q, %q)", english1, english2, rest1)
	}

	rest2, hindi2 := SplitScripts(hindi1)
	if hindi2 != hindi1 || rest2 != "" {
		t.Errorf("hindi channel not stable: %q -> (%q, %q)", hindi1, rest2, hindi2)
	}
}

func TestSplitScriptsDegenerate(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t  "},
		{"digits and punctuation", "123 456 ... !!! ---"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			english, hindi := SplitScripts(tc.input)
			if english != "" || hindi != "" {
				t.Errorf("expected empty channels, got (%q, %q)", english, hindi)
			}
		})
	}
}

func TestSplitScriptsDominantWithNoise(t *testing.T) {
	// a stray transliterated term must not fragment single-script text
	text := "The Quit India movement began in 1942 under Gandhi at the Bombay session."

	english, hindi := SplitScripts(text)
	if english != text {
		t.Errorf("dominant english text was fragmented: %q", english)
	}
	if hindi != "" {
		t.Errorf("expected empty hindi channel, got %q", hindi)
	}
}
