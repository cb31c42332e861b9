package services

import (
	"log"
	"strings"
	"unicode"
)

// legacyFont is one known glyph-mapped Hindi font. Replacements are
// ordered longest-first so multi-glyph clusters win over single glyphs.
type legacyFont struct {
	Name         string
	Replacements []glyphMapping
}

// glyphMapping maps one legacy glyph sequence to its Unicode Devanagari form
type glyphMapping struct {
	From string
	To   string
}

// devanagariRatioThreshold is the minimum share of alphabetic characters
// that must already be Devanagari before legacy font conversion is
// attempted. Below it the text is treated as genuinely English-dominant
// and never converted, so Latin script is not corrupted.
const devanagariRatioThreshold = 0.10

// knownLegacyFonts is the fixed, ordered list of legacy font candidates.
// Kruti Dev is by far the most common source of garbled Hindi question
// papers, so it is tried first.
var knownLegacyFonts = []legacyFont{
	{
		Name: "KrutiDev010",
		Replacements: []glyphMapping{
			// conjuncts and multi-glyph clusters first
			{"d`", "र्क"}, {"D;", "क्य"}, {"{k", "क्ष"}, {"=k", "त्र"}, {"Kk", "ज्ञ"},
			{"fFk", "थि"}, {"fp", "चि"}, {"fd", "कि"}, {"fu", "नि"}, {"fe", "मि"},
			{"fy", "लि"}, {"fo", "वि"}, {"fl", "सि"}, {"fg", "हि"}, {"fj", "रि"},
			{"vk", "आ"}, {"bZ", "ई"}, {"mQ", "ऊ"}, {",s", "ऐ"}, {"vks", "ओ"}, {"vkS", "औ"},
			{"Fk", "थ"}, {"/k", "ध"}, {"Hk", "भ"}, {"\"k", "ष"}, {"'k", "श"},
			{"[k", "ख"}, {"?k", "घ"}, {"Nk", "छा"}, {">k", "झा"},
			{"pkS", "चौ"}, {"dks", "को"}, {"gSa", "हैं"}, {"gS", "है"},
			{"ksa", "ों"}, {"ks", "ो"}, {"kS", "ौ"}, {"ka", "ां"}, {"kW", "ॉ"},
			// single glyphs
			{"v", "अ"}, {"b", "इ"}, {"m", "उ"}, {",", "ए"},
			{"d", "क"}, {"x", "ग"}, {"p", "च"}, {"N", "छ"}, {"t", "ज"}, {">", "झ"},
			{"V", "ट"}, {"B", "ठ"}, {"M", "ड"}, {"<", "ढ"}, {".k", "ण"},
			{"r", "त"}, {"n", "द"}, {"u", "न"},
			{"i", "प"}, {"Q", "फ"}, {"c", "ब"}, {"e", "म"},
			{";", "य"}, {"j", "र"}, {"y", "ल"}, {"o", "व"},
			{"l", "स"}, {"g", "ह"},
			{"k", "ा"}, {"h", "ी"}, {"q", "ु"}, {"w", "ू"}, {"s", "े"}, {"S", "ै"},
			{"a", "ं"}, {"`", "ृ"}, {"~", "्"}, {"A", "।"},
			{"]", ","}, {"&", "-"},
		},
	},
	{
		Name: "Chanakya",
		Replacements: []glyphMapping{
			{"Áä", "प्रो"}, {"Á", "प्र"}, {"•", "क्त"}, {"ˆ", "क्र"},
			{"Äá", "ध्या"}, {"Å", "ऊ"}, {"•â", "का"},
			{"ÿ", "त्त"}, {"ñ", "ष्ट"}, {"ü", "द्ध"},
			{"á", "ा"}, {"é", "ी"}, {"ç", "ि"}, {"è", "ध"}, {"Ö", "भ"},
			{"Æ", "ण"}, {"ß", "श"}, {"œ", "ख"}, {"Ù", "त्र"},
			{"ã", "ह"}, {"Ô", "ड"}, {"Õ", "ब"}, {"ö", "फ"},
			{"ä", "ो"}, {"ê", "ै"}, {"î", "ौ"}, {"æ", "द"}, {"Ò", "म"},
			{"Ñ", "कृ"}, {"Ó", "य"}, {"ð", "व"}, {"Ï", "स"},
		},
	},
}

// RecoverLegacyHindi attempts to reinterpret text that was encoded with a
// non-Unicode glyph-mapped Hindi font. Each known font is tried in order
// and a conversion is kept only when it strictly increases the number of
// valid Devanagari characters; otherwise the original text is returned.
// The applied font name is returned, or "" when no conversion was kept.
func RecoverLegacyHindi(text string) (string, string) {
	if text == "" {
		return text, ""
	}

	ratio := devanagariRatio(text)
	if ratio < devanagariRatioThreshold {
		// English-dominant or no Hindi at all: conversion would corrupt
		// Latin script, skip entirely
		return text, ""
	}

	originalCount := countDevanagari(text)

	for _, font := range knownLegacyFonts {
		converted := applyFont(text, font)
		if countDevanagari(converted) > originalCount {
			log.Printf("Font Recovery: Applied %s mapping (%d -> %d Devanagari chars)",
				font.Name, originalCount, countDevanagari(converted))
			return converted, font.Name
		}
	}

	return text, ""
}

// applyFont runs the font's replacement table over the text. Hindi runs
// are converted line by line; lines that are pure ASCII instructional text
// with no mapped glyphs come through unchanged.
func applyFont(text string, font legacyFont) string {
	var out strings.Builder
	out.Grow(len(text))

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(applyFontToLine(line, font))
	}
	return out.String()
}

func applyFontToLine(line string, font legacyFont) string {
	for _, m := range font.Replacements {
		line = strings.ReplaceAll(line, m.From, m.To)
	}
	return line
}

// countDevanagari counts characters in the Devanagari Unicode block
func countDevanagari(text string) int {
	count := 0
	for _, r := range text {
		if isDevanagari(r) {
			count++
		}
	}
	return count
}

// devanagariRatio returns the share of alphabetic characters that are
// Devanagari. Characters outside both scripts are ignored.
func devanagariRatio(text string) float64 {
	devanagari := 0
	alphabetic := 0
	for _, r := range text {
		switch {
		case isDevanagari(r):
			devanagari++
			alphabetic++
		case unicode.IsLetter(r):
			alphabetic++
		}
	}
	if alphabetic == 0 {
		return 0
	}
	return float64(devanagari) / float64(alphabetic)
}

// isDevanagari reports whether the rune falls in the Devanagari block,
// including the extended block used by some fonts
func isDevanagari(r rune) bool {
	return (r >= 0x0900 && r <= 0x097F) || (r >= 0xA8E0 && r <= 0xA8FF)
}
