package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// maxExplanationLength bounds the stored explanation text per question
const maxExplanationLength = 2000

// Answer key layout patterns. Applied as a union over the full text, not
// as a priority chain: every in-range match is recorded, first match per
// question wins across all patterns. The most specific layout is listed
// first so it supplies the value on overlap.
var answerKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,3})\s*\.\s*\(\s*([a-dA-D])\s*\)`),   // "12. (c)"
	regexp.MustCompile(`(?m)^\s*(\d{1,3})\s*[:.]\s*([a-dA-D])\b`), // "12: c" at line start
	regexp.MustCompile(`(?i)Q\s*(\d{1,3})\s*[:.]\s*([a-dA-D])\b`), // "Q12: c"
}

// keyMatch is one recognized answer with its position in the text
type keyMatch struct {
	index  int // zero-based question index
	letter string
	pos    int
}

// ParseAnswerKey extracts a zero-indexed question->letter mapping from
// solution document text. Matches outside [0, expectedCount) or with a
// letter outside A-D are ignored.
func ParseAnswerKey(text string, expectedCount int) map[int]string {
	key := make(map[int]string)
	for _, m := range collectKeyMatches(text, expectedCount) {
		if _, exists := key[m.index]; !exists {
			key[m.index] = m.letter
		}
	}
	return key
}

// ParseExplanations captures the text span between one answer match and
// the next as that question's explanation, cleaned and length-bounded.
// Returns a zero-indexed map; questions without a span are absent.
func ParseExplanations(text string, expectedCount int) map[int]string {
	matches := collectKeyMatches(text, expectedCount)
	if len(matches) == 0 {
		return nil
	}

	// spans are positional, so order by occurrence and keep the first
	// match per index
	sort.Slice(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	explanations := make(map[int]string)
	for i, m := range matches {
		if _, exists := explanations[m.index]; exists {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1].pos
		}
		span := cleanExplanation(text[m.pos:end])
		if span != "" {
			explanations[m.index] = span
		}
	}
	return explanations
}

// collectKeyMatches runs the pattern union, ordered by pattern priority
// then position, so the first-match-wins rule favors the most specific
// layout
func collectKeyMatches(text string, expectedCount int) []keyMatch {
	var matches []keyMatch
	for _, pattern := range answerKeyPatterns {
		for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
			num, err := strconv.Atoi(text[m[2]:m[3]])
			if err != nil {
				continue
			}
			index := num - 1
			if index < 0 || index >= expectedCount {
				continue
			}
			letter := strings.ToUpper(text[m[4]:m[5]])
			matches = append(matches, keyMatch{index: index, letter: letter, pos: m[0]})
		}
	}
	return matches
}

// explanationBoilerplate lines dropped from explanation spans
var explanationBoilerplate = []string{
	"answer key",
	"solutions",
	"hints and solutions",
	"explanation:",
	"sol.",
	"ans.",
}

// cleanExplanation strips the leading answer marker line, boilerplate and
// bounds the result
func cleanExplanation(span string) string {
	lines := strings.Split(span, "\n")
	var kept []string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if i == 0 {
			// drop the "12. (c)" marker line itself; keep any trailing
			// text after the letter
			continue
		}
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		skip := false
		for _, b := range explanationBoilerplate {
			if strings.HasPrefix(lower, b) {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, trimmed)
		}
	}

	result := strings.TrimSpace(strings.Join(kept, "\n"))
	if len(result) > maxExplanationLength {
		result = result[:maxExplanationLength]
	}
	return result
}
