package scansion

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// shortVowels are the plain vowels; length comes from position.
	shortVowels = "aeiouy"
	// longVowels carry a macron and are long by nature.
	longVowels = "āēīōūȳ"
)

// atoneReplacer removes vowel quantity marks (macrons and breves)
// from lowercase and uppercase letters.
var atoneReplacer = strings.NewReplacer(
	// lowercase macrons and breves
	"ā", "a", // ā → a
	"ă", "a", // ă → a
	"ē", "e", // ē → e
	"ĕ", "e", // ĕ → e
	"ī", "i", // ī → i
	"ĭ", "i", // ĭ → i
	"ō", "o", // ō → o
	"ŏ", "o", // ŏ → o
	"ū", "u", // ū → u
	"ŭ", "u", // ŭ → u
	"ȳ", "y", // ȳ → y
	"ў", "y", // ў → y
	// uppercase macrons and breves
	"Ā", "A", // Ā → A
	"Ă", "A", // Ă → A
	"Ē", "E", // Ē → E
	"Ĕ", "E", // Ĕ → E
	"Ī", "I", // Ī → I
	"Ĭ", "I", // Ĭ → I
	"Ō", "O", // Ō → O
	"Ŏ", "O", // Ŏ → O
	"Ū", "U", // Ū → U
	"Ŭ", "U", // Ŭ → U
	"Ȳ", "Y", // Ȳ → Y
	"Ў", "Y", // Ў → Y
)

// Atone strips all vowel-quantity diacritics from s.
// The combining breve (U+0306) is also removed.
func Atone(s string) string {
	s = atoneReplacer.Replace(s)
	return strings.ReplaceAll(s, "\u0306", "")
}

// foldReplacer reads breve-marked vowels as plain vowels (a breve only
// confirms what the rules already assume) and expands the ligatures.
// Macrons are kept: they are what makes a vowel long.
var foldReplacer = strings.NewReplacer(
	"ă", "a", // ă → a
	"ĕ", "e", // ĕ → e
	"ĭ", "i", // ĭ → i
	"ŏ", "o", // ŏ → o
	"ŭ", "u", // ŭ → u
	"Ă", "A", // Ă → A
	"Ĕ", "E", // Ĕ → E
	"Ĭ", "I", // Ĭ → I
	"Ŏ", "O", // Ŏ → O
	"Ŭ", "U", // Ŭ → U
	"\u0306", "", // combining breve
	"æ", "ae", // æ → ae
	"Æ", "Ae", // Æ → Ae
	"œ", "oe", // œ → oe
	"Œ", "Oe", // Œ → Oe
)

// Fold prepares a raw line for classification: decomposed macrons are
// composed (NFC), breves are dropped and ligatures expanded.
func Fold(line string) string {
	return foldReplacer.Replace(norm.NFC.String(line))
}

// hasVowel reports whether s contains a plain or long vowel.
func hasVowel(s string) bool {
	return strings.ContainsAny(strings.ToLower(s), shortVowels+longVowels)
}

// hasLongVowel reports whether s contains a macron vowel.
func hasLongVowel(s string) bool {
	return strings.ContainsAny(s, longVowels)
}

// lettersOnly lowercases s and keeps only letters, dropping punctuation,
// whitespace and markup.
func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if isLetterRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripVowels removes plain and long vowels from s.
func stripVowels(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !strings.ContainsRune(shortVowels+longVowels, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
