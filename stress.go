package scansion

// enclitic is the bound suffix that pulls stress onto the syllable before it.
// -ne and -ve are left out: they are as often just the end of a word.
const enclitic = "que"

// AssignStress returns a copy of syls in which every word carries one
// stressed syllable. Words already holding an accent (a "^" override) are left
// alone. A back-reference that would fall before the start of the line is
// reported as ErrStressBounds and the word stays unstressed.
func AssignStress(raw string, syls []Syllable) ([]Syllable, []error) {
	out := append([]Syllable(nil), syls...)
	var issues []error
	for i := range out {
		final := out[i]
		if !final.WordEnd || wordAccented(out, i) {
			continue
		}
		// An elided final syllable merges into the next word, so the word
		// counts one syllable more than it shows and every target shifts.
		offset := 0
		if final.Elided {
			offset = 1
		}
		count := 1 + final.SyllableIndex + offset
		penult := i + offset - 1

		var target int
		switch {
		case final.WordStart:
			target = i
		case count == 2:
			target = penult
		case Atone(lettersOnly(mergedFinal(final))) == enclitic:
			target = penult
		case count > 2 && penult >= 0 && out[penult].Long:
			target = penult
		default:
			target = penult - 1
		}
		if target < 0 {
			issues = append(issues, syllableIssue(ErrStressBounds, raw, out, i))
			continue
		}
		out[target].Accented = true
	}
	return out, issues
}

// mergedFinal is the phonological text of a word's last syllable: the elided
// remainder when the final vowel was elided.
func mergedFinal(s Syllable) string {
	if s.Elided {
		return s.ElidedRemainder
	}
	return s.Phonetic
}

// wordAccented reports whether any syllable of the word ending at end
// already carries stress.
func wordAccented(syls []Syllable, end int) bool {
	word := syls[end].WordIndex
	for i := end; i >= 0 && syls[i].WordIndex == word; i-- {
		if syls[i].Accented {
			return true
		}
	}
	return false
}
