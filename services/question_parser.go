package services

import (
	"regexp"
	"strconv"
	"strings"
)

// QuestionFragment is one question as it appeared on one page in one
// script. Option slots are positional A..D; a slot's text is empty when
// extraction could not recover it, but the slot itself always exists.
type QuestionFragment struct {
	Number  int
	Text    string
	Options [4]string
	Script  string // "english" | "hindi"
}

const (
	// minBlockLength filters page-number artifacts and header noise that
	// survive block segmentation
	minBlockLength = 10

	// maxOptionLength is the plausibility bound beyond which an option
	// body is re-scanned for a marker that leaked into it
	maxOptionLength = 180
)

// questionBlockRe matches a question number at a line boundary followed by
// a period, parenthesis or danda. Numbers are validated against the
// accepted range after matching.
var questionBlockRe = regexp.MustCompile(`(?m)^[ \t>]*(\d{1,3})[ \t]*[.)।]`)

// optionMatch records one recognized option marker inside a block
type optionMatch struct {
	letter int // 0..3 for A..D
	start  int // index of the marker itself
	end    int // index just past the marker, where the option text begins
}

// optionStrategy locates option markers in a block. Strategies are tried
// in priority order; the first one that yields exactly four distinct
// letters wins.
type optionStrategy struct {
	name    string
	pattern *regexp.Regexp
	letter  func(match string) int
}

var latinLetterIndex = map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}

// devanagariOptionIndex maps native Hindi option glyphs to A..D. Papers
// use either the consonant series (क ख ग घ) or the transliterated one
// (अ ब स द).
var devanagariOptionIndex = map[string]int{
	"क": 0, "ख": 1, "ग": 2, "घ": 3,
	"अ": 0, "ब": 1, "स": 2, "द": 3,
}

var optionStrategies = []optionStrategy{
	{
		name:    "parenthesized-latin",
		pattern: regexp.MustCompile(`\(([a-dA-D])\)`),
		letter:  func(m string) int { return latinLetterIndex[strings.ToLower(m)] },
	},
	{
		name:    "bare-latin",
		pattern: regexp.MustCompile(`(?m)(?:^|[\s])([a-dA-D])\)`),
		letter:  func(m string) int { return latinLetterIndex[strings.ToLower(m)] },
	},
	{
		name:    "devanagari-glyph",
		pattern: regexp.MustCompile(`[(]?([कखगघअबसद])[).।]`),
		letter:  func(m string) int { return devanagariOptionIndex[m] },
	},
}

// instructional phrases stripped from the tail of a question stem. Matched
// by prefix against the remaining text, case-insensitive.
var boilerplatePhrases = []string{
	"select the correct answer",
	"choose the correct answer",
	"choose the correct option",
	"which of the codes given below",
	"codes:",
	"code:",
	"नीचे दिए गए कूट",
	"सही उत्तर चुनिए",
	"सही उत्तर का चयन",
	"कूट:",
}

// ParseQuestions splits page text into per-question blocks and extracts
// options from each. Blocks that match no option strategy still produce a
// fragment with four empty option slots; the merge step decides what to do
// with under-specified fragments.
func ParseQuestions(pageText, script string, maxNumber int) []QuestionFragment {
	if maxNumber <= 0 {
		maxNumber = BilingualQuestionCountLimit
	}

	blocks := splitQuestionBlocks(pageText, maxNumber)

	fragments := make([]QuestionFragment, 0, len(blocks))
	for _, block := range blocks {
		frag := parseBlock(block.number, block.text, script)
		fragments = append(fragments, frag)
	}
	return fragments
}

// BilingualQuestionCountLimit bounds accepted question numbers when the
// caller does not fix the paper length
const BilingualQuestionCountLimit = 100

type questionBlock struct {
	number int
	text   string
}

// splitQuestionBlocks cuts the page at every accepted question-number
// marker and drops blocks too short to hold real content
func splitQuestionBlocks(text string, maxNumber int) []questionBlock {
	matches := questionBlockRe.FindAllStringSubmatchIndex(text, -1)

	var blocks []questionBlock
	for i, m := range matches {
		num, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || num < 1 || num > maxNumber {
			continue
		}

		bodyStart := m[1] // just past the delimiter
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}

		body := strings.TrimSpace(text[bodyStart:bodyEnd])
		if len(body) < minBlockLength {
			continue
		}
		blocks = append(blocks, questionBlock{number: num, text: body})
	}
	return blocks
}

// parseBlock extracts the stem and four options from one question block
func parseBlock(number int, block, script string) QuestionFragment {
	frag := QuestionFragment{Number: number, Script: script}

	matches, ok := findOptions(block)
	if !ok {
		// semicolon-delimited fallback: stem; opt; opt; opt; opt
		if parts := strings.Split(block, ";"); len(parts) >= 5 {
			frag.Text = cleanQuestionText(parts[0])
			for i := 0; i < 4; i++ {
				frag.Options[i] = strings.TrimSpace(parts[i+1])
			}
			return frag
		}
		// no strategy matched: keep the question, leave slots empty
		frag.Text = cleanQuestionText(block)
		return frag
	}

	frag.Text = cleanQuestionText(block[:matches[0].start])

	for i, m := range matches {
		end := len(block)
		if i+1 < len(matches) {
			end = matches[i+1].start
		}
		frag.Options[m.letter] = truncateLeakedOption(strings.TrimSpace(block[m.end:end]))
	}
	return frag
}

// findOptions runs the strategy chain and returns matches for the first
// strategy producing exactly four distinct letters, ordered by position
func findOptions(block string) ([]optionMatch, bool) {
	for _, strategy := range optionStrategies {
		raw := strategy.pattern.FindAllStringSubmatchIndex(block, -1)
		if len(raw) < 4 {
			continue
		}

		var matches []optionMatch
		seen := [4]bool{}
		for _, m := range raw {
			letter := strategy.letter(block[m[2]:m[3]])
			if seen[letter] {
				continue // first occurrence of each letter wins
			}
			seen[letter] = true
			matches = append(matches, optionMatch{letter: letter, start: m[0], end: m[1]})
		}

		if seen[0] && seen[1] && seen[2] && seen[3] {
			return matches, true
		}
	}
	return nil, false
}

// cleanQuestionText trims the stem and strips trailing instructional
// boilerplate by fixed phrase-prefix matching
func cleanQuestionText(text string) string {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	cut := len(text)
	for _, phrase := range boilerplatePhrases {
		if idx := strings.Index(lower, phrase); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(strings.Trim(text[:cut], ":-"))
}

// truncateLeakedOption re-truncates an implausibly long option body at a
// marker position that erroneously leaked into it
func truncateLeakedOption(option string) string {
	if len(option) <= maxOptionLength {
		return option
	}
	for _, strategy := range optionStrategies {
		if loc := strategy.pattern.FindStringIndex(option); loc != nil && loc[0] > 0 {
			return strings.TrimSpace(option[:loc[0]])
		}
	}
	return option
}
