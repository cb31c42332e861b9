package services

import (
	"strings"
	"unicode"
)

// script classification for a single rune
type scriptClass int

const (
	scriptNeither scriptClass = iota
	scriptLatin
	scriptDevanagari
)

// dominantScriptRatio is the share of alphabetic characters above which
// the whole string is assigned to one script without run-splitting. This
// keeps genuinely single-script text from fragmenting around stray
// symbols or transliterated terms.
const dominantScriptRatio = 0.90

func classifyRune(r rune) scriptClass {
	switch {
	case isDevanagari(r):
		return scriptDevanagari
	case unicode.IsLetter(r) && r < 0x0900:
		return scriptLatin
	default:
		return scriptNeither
	}
}

// SplitScripts partitions mixed-script text into an English channel and a
// Hindi channel. It is total and idempotent: any input, including empty or
// whitespace-only text, yields two possibly-empty strings whose alphabetic
// content partitions the input's.
func SplitScripts(text string) (english, hindi string) {
	latin := 0
	devanagari := 0
	for _, r := range text {
		switch classifyRune(r) {
		case scriptLatin:
			latin++
		case scriptDevanagari:
			devanagari++
		}
	}

	alphabetic := latin + devanagari
	if alphabetic == 0 {
		return "", ""
	}

	// Short-circuit: overwhelmingly one script, return whole string as-is
	if float64(latin)/float64(alphabetic) >= dominantScriptRatio {
		return strings.TrimSpace(text), ""
	}
	if float64(devanagari)/float64(alphabetic) >= dominantScriptRatio {
		return "", strings.TrimSpace(text)
	}

	var englishRuns, hindiRuns []string
	var run strings.Builder
	current := scriptNeither

	flush := func() {
		s := strings.TrimSpace(run.String())
		run.Reset()
		if s == "" {
			return
		}
		if current == scriptDevanagari {
			hindiRuns = append(hindiRuns, s)
		} else {
			englishRuns = append(englishRuns, s)
		}
	}

	for _, r := range text {
		class := classifyRune(r)
		if class == scriptNeither {
			// punctuation/digits/whitespace join the open run, never
			// start one of their own
			if run.Len() > 0 {
				run.WriteRune(r)
			}
			continue
		}
		if current == scriptNeither {
			current = class
		} else if class != current {
			flush()
			current = class
		}
		run.WriteRune(r)
	}
	flush()

	english = strings.Join(englishRuns, " ")
	hindi = strings.Join(hindiRuns, " ")

	// Degenerate inputs sometimes leave most of the dominant script in
	// the wrong bucket. Reassign the whole string when that happens.
	if devanagari > latin && countDevanagari(hindi)*2 < devanagari {
		return "", strings.TrimSpace(text)
	}
	if latin > devanagari && countLatin(english)*2 < latin {
		return strings.TrimSpace(text), ""
	}

	return english, hindi
}

func countLatin(text string) int {
	count := 0
	for _, r := range text {
		if classifyRune(r) == scriptLatin {
			count++
		}
	}
	return count
}
