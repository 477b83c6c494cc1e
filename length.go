package scansion

import "strings"

// diphthongs are long wherever they appear in a syllable.
var diphthongs = []string{"ae", "au", "ei", "eu", "oe", "ui", "yi"}

// closing letters end a closed syllable. Consonantal "i" counts, which is
// why a lone final "i" needs its own rule.
const closing = consonants + "i"

// IsLong decides the length of a syllable from its phonological text.
// The rules are tried in order and the first match wins:
//
//  1. a long (macron) vowel makes the syllable long;
//  2. a leading "qu" is dropped, it never affects weight;
//  3. a diphthong makes it long;
//  4. a final "i" that is the only "i" makes it short;
//  5. a final consonant (closed syllable) makes it long;
//  6. anything else is short.
func IsLong(phonetic string) bool {
	if hasLongVowel(phonetic) {
		return true
	}
	s := strings.TrimPrefix(phonetic, "qu")
	for _, d := range diphthongs {
		if strings.Contains(s, d) {
			return true
		}
	}
	if strings.HasSuffix(s, "i") && strings.Count(s, "i") == 1 {
		return false
	}
	if s == "" {
		return false
	}
	last := []rune(s)[len([]rune(s))-1]
	return strings.ContainsRune(closing, last)
}
