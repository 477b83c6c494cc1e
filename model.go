package scansion

import "strings"

// FootType is the metrical shape of a foot.
type FootType int

const (
	// Unresolved marks a syllable the foot scanner never closed into a foot.
	Unresolved FootType = iota
	// Dactyl is long-short-short.
	Dactyl
	// Spondee is long-long.
	Spondee
	// Trochee is long-short, licit only as the closing foot of a line.
	Trochee
)

// Code returns the one-letter fixture code for f ("D", "S", "T"),
// or "" for Unresolved.
func (f FootType) Code() string {
	switch f {
	case Dactyl:
		return "D"
	case Spondee:
		return "S"
	case Trochee:
		return "T"
	default:
		return ""
	}
}

func (f FootType) String() string {
	switch f {
	case Dactyl:
		return "dactyl"
	case Spondee:
		return "spondee"
	case Trochee:
		return "trochee"
	default:
		return "unresolved"
	}
}

// Syllable is one metrical syllable of a verse line.
type Syllable struct {
	// Display is the text as typeset, punctuation and parenthesis markup included.
	Display string
	// Phonetic is the lowercase phonological text the length and stress rules read.
	Phonetic string
	// Long is the vowel length decided by IsLong at creation time.
	Long bool
	// Accented is true for the stressed syllable of a word.
	Accented bool

	// WordIndex is the number of the word within the line.
	WordIndex int
	// SyllableIndex is the position within the word, restarting at 0 per word.
	SyllableIndex int
	WordStart     bool
	WordEnd       bool

	// Elided is set when the final vowel is dropped before a following
	// vowel-initial parenthetical group; ElidedRemainder holds that group's
	// first fragment.
	Elided          bool
	ElidedRemainder string

	CaesuraAfter bool

	// FootPosition is the slot within the foot (0, 1 or 2) and FootIndex the
	// 0-based foot number; both stay -1 when the scanner never reached the syllable.
	FootPosition int
	FootIndex    int
	Foot         FootType
	FootStart    bool
	FootEnd      bool

	// OpenStart and OpenEnd mark enjambment across the line boundary.
	OpenStart bool
	OpenEnd   bool
}

// Line is the scansion of one verse.
type Line struct {
	// Number is the verse number, 0 when the line was scanned on its own.
	Number int
	// Raw is the line as handed to the segmenter.
	Raw string
	// Syllables is owned by the line; no syllable is shared across lines.
	Syllables []Syllable
	// OpenEnd reports a runon marker at the end of Raw.
	OpenEnd bool
	// Feet is the number of feet the scanner opened.
	Feet int
	// Issues collects every diagnostic raised while scanning the line.
	Issues []error
}

// FootTypes concatenates one code per foot, read from the foot-final syllables.
func (l *Line) FootTypes() string {
	var b strings.Builder
	for _, s := range l.Syllables {
		if s.FootEnd {
			b.WriteString(s.Foot.Code())
		}
	}
	return b.String()
}

// Stresses concatenates "V" for every accented syllable and "o" otherwise.
func (l *Line) Stresses() string {
	var b strings.Builder
	for _, s := range l.Syllables {
		if s.Accented {
			b.WriteByte('V')
		} else {
			b.WriteByte('o')
		}
	}
	return b.String()
}

// Fixture returns the compact regression triple for the line.
func (l *Line) Fixture() Fixture {
	return Fixture{Line: l.Raw, Feet: l.FootTypes(), Stresses: l.Stresses()}
}

// Scanned reports whether the line scanned into exactly six feet without
// any scansion violation.
func (l *Line) Scanned() bool {
	if l.Feet != HexameterFeet {
		return false
	}
	for _, err := range l.Issues {
		if isFatal(err) {
			return false
		}
	}
	return true
}
