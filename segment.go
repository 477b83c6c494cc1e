package scansion

import (
	"strings"
)

// segState is the segmenter's position relative to syllables and
// parenthetical elision groups.
type segState int

const (
	// stateIdle: between syllables, both accumulators empty.
	stateIdle segState = iota
	// stateInWord: accumulating a syllable.
	stateInWord
	// stateInParenFirst: inside "(", before the inner space (the X fragment).
	stateInParenFirst
	// stateInParenSecond: inside "(", after the inner space (the Y fragment).
	stateInParenSecond
	numStates
)

func (s segState) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateInWord:
		return "InWord"
	case stateInParenFirst:
		return "InParenFirst"
	case stateInParenSecond:
		return "InParenSecond"
	default:
		return "segState(?)"
	}
}

// breakKind is the separator that closed the last syllable.
type breakKind int

const (
	breakSpace breakKind = iota
	breakHyphen
	breakClose
)

// action handles one classified unit in a given state.
type action func(sg *segmenter, c char)

// transitions is the full (state, class) table. A nil entry ignores the unit.
var transitions = [numStates][numClasses]action{
	stateIdle: {
		classInvalid:   (*segmenter).invalid,
		classVowel:     (*segmenter).letter,
		classLongVowel: (*segmenter).letter,
		classConsonant: (*segmenter).letter,
		classPunct:     (*segmenter).punct,
		classSpace:     (*segmenter).wordBreak,
		classHyphen:    (*segmenter).syllableBreak,
		classOpen:      (*segmenter).open,
		classClose:     (*segmenter).strayClose,
		classAccent:    (*segmenter).accentMark,
		classCaesura:   (*segmenter).caesura,
		classRunon:     (*segmenter).runon,
	},
	stateInWord: {
		classInvalid:   (*segmenter).invalid,
		classVowel:     (*segmenter).letter,
		classLongVowel: (*segmenter).letter,
		classConsonant: (*segmenter).letter,
		classPunct:     (*segmenter).punct,
		classSpace:     (*segmenter).flushWord,
		classHyphen:    (*segmenter).flushSyllable,
		classOpen:      (*segmenter).open,
		classClose:     (*segmenter).strayClose,
		classAccent:    (*segmenter).accentMark,
		classCaesura:   (*segmenter).flushCaesura,
		classRunon:     (*segmenter).runon,
	},
	stateInParenFirst: {
		classInvalid:   (*segmenter).invalid,
		classVowel:     (*segmenter).parenLetter,
		classLongVowel: (*segmenter).parenLetter,
		classConsonant: (*segmenter).parenLetter,
		classPunct:     (*segmenter).punct,
		classSpace:     (*segmenter).parenSpace,
		classHyphen:    (*segmenter).parenHyphen,
		classOpen:      (*segmenter).nestedOpen,
		classClose:     (*segmenter).close,
		classAccent:    (*segmenter).accentMark,
		classCaesura:   (*segmenter).caesura,
		classRunon:     (*segmenter).runon,
	},
	stateInParenSecond: {
		classInvalid:   (*segmenter).invalid,
		classVowel:     (*segmenter).parenLetter,
		classLongVowel: (*segmenter).parenLetter,
		classConsonant: (*segmenter).parenLetter,
		classPunct:     (*segmenter).punct,
		classSpace:     (*segmenter).parenSpace,
		classHyphen:    (*segmenter).parenHyphen,
		classOpen:      (*segmenter).nestedOpen,
		classClose:     (*segmenter).close,
		classAccent:    (*segmenter).accentMark,
		classCaesura:   (*segmenter).caesura,
		classRunon:     (*segmenter).runon,
	},
}

// Segmentation is the first-pass result for one line: syllables with length,
// word and boundary data but no stress or foot annotation.
type Segmentation struct {
	Syllables []Syllable
	// OpenEnd reports a runon marker at the end of the line.
	OpenEnd bool
	Issues  []error
}

// segmenter carries every piece of running state for one segmentation, so
// segmenting is reentrant and each step can be tested on its own.
type segmenter struct {
	raw   string
	chars []char
	pos   int
	state segState

	display  strings.Builder
	phonetic strings.Builder
	// first and second hold the verbatim X and Y fragments of an elision group.
	first  strings.Builder
	second strings.Builder

	accent        bool
	wordIndex     int
	wordSyllables int
	lastBreak     breakKind
	// prefix holds punctuation met before the first syllable of the line.
	prefix string

	syllables []Syllable
	openEnd   bool
	issues    []error
}

// Segment splits a marked-up line into syllables. openStart is the runon flag
// carried from the previous line; it lands on the first syllable, and the
// line's own runon marker lands on the last.
func Segment(line string, openStart bool) Segmentation {
	sg := newSegmenter(line)
	sg.run()
	if n := len(sg.syllables); n > 0 {
		sg.syllables[0].OpenStart = openStart
		sg.syllables[n-1].OpenEnd = sg.openEnd
	}
	return Segmentation{Syllables: sg.syllables, OpenEnd: sg.openEnd, Issues: sg.issues}
}

func newSegmenter(raw string) *segmenter {
	return &segmenter{raw: raw, lastBreak: breakSpace}
}

func (sg *segmenter) run() {
	text := Fold(sg.raw)
	// A trailing space flushes the final syllable.
	if !strings.HasSuffix(text, " ") {
		text += " "
	}
	chars, err := classify(text)
	if err != nil {
		sg.issues = append(sg.issues, issuef(ErrInvalidChar, sg.raw, "%v", err))
		return
	}
	sg.chars = chars
	for sg.pos = 0; sg.pos < len(sg.chars); sg.pos++ {
		sg.step(sg.chars[sg.pos])
	}
	if sg.state == stateInParenFirst || sg.state == stateInParenSecond {
		sg.issues = append(sg.issues, issuef(ErrMarkup, sg.raw, "unclosed parenthesis"))
		sg.flush(breakSpace)
		sg.state = stateIdle
	}
}

func (sg *segmenter) step(c char) {
	if act := transitions[sg.state][c.class]; act != nil {
		act(sg, c)
	}
}

func (sg *segmenter) letter(c char) {
	sg.display.WriteString(c.text)
	sg.phonetic.WriteString(strings.ToLower(c.text))
	sg.state = stateInWord
}

// parenLetter routes letters inside an elision group to its current fragment;
// they reach the phonological text only when the group closes.
func (sg *segmenter) parenLetter(c char) {
	sg.display.WriteString(c.text)
	sg.fragment().WriteString(c.text)
}

func (sg *segmenter) punct(c char) {
	sg.display.WriteString(c.text)
	switch sg.state {
	case stateIdle:
		sg.state = stateInWord
	case stateInParenFirst, stateInParenSecond:
		sg.fragment().WriteString(c.text)
	}
}

func (sg *segmenter) fragment() *strings.Builder {
	if sg.state == stateInParenSecond {
		return &sg.second
	}
	return &sg.first
}

// wordBreak starts a new word unless the current one is still empty.
func (sg *segmenter) wordBreak(char) {
	if sg.wordSyllables > 0 {
		sg.wordIndex++
		sg.wordSyllables = 0
	}
	sg.lastBreak = breakSpace
}

func (sg *segmenter) syllableBreak(char) {
	sg.lastBreak = breakHyphen
}

func (sg *segmenter) flushWord(c char) {
	sg.flush(breakSpace)
	sg.wordBreak(c)
	sg.state = stateIdle
}

func (sg *segmenter) flushSyllable(char) {
	sg.flush(breakHyphen)
	sg.state = stateIdle
}

func (sg *segmenter) open(char) {
	sg.display.WriteString("(")
	sg.first.Reset()
	sg.second.Reset()
	sg.state = stateInParenFirst
}

func (sg *segmenter) nestedOpen(c char) {
	sg.issues = append(sg.issues, issuef(ErrMarkup, sg.raw, "nested parenthesis at column %d", c.col))
}

func (sg *segmenter) strayClose(c char) {
	sg.issues = append(sg.issues, issuef(ErrMarkup, sg.raw, "unmatched parenthesis at column %d", c.col))
}

// parenSpace closes the syllable holding the X fragment; X itself stays in
// that syllable's display text only.
func (sg *segmenter) parenSpace(c char) {
	sg.flush(breakSpace)
	sg.wordBreak(c)
	sg.state = stateInParenSecond
}

func (sg *segmenter) parenHyphen(char) {
	sg.flush(breakHyphen)
}

// close resolves an elision group (X Y). A vowel in X elides the syllable
// before the group. When X and Y both have vowels, X loses its vowels and its
// consonants move on to Y; otherwise only Y reaches the phonological text.
func (sg *segmenter) close(char) {
	x, y := sg.first.String(), sg.second.String()
	xVowel, yVowel := hasVowel(x), hasVowel(y)
	if xVowel {
		if n := len(sg.syllables); n > 0 {
			sg.syllables[n-1].Elided = true
			sg.syllables[n-1].ElidedRemainder = x
		} else {
			sg.issues = append(sg.issues, issuef(ErrMarkup, sg.raw, "elision %q has no preceding syllable", x))
		}
	}
	carried := lettersOnly(y)
	if xVowel && yVowel {
		carried = stripVowels(lettersOnly(x)) + carried
	}
	sg.phonetic.WriteString(carried)
	sg.display.WriteString(")")
	sg.first.Reset()
	sg.second.Reset()
	sg.flush(breakClose)
	sg.state = stateIdle
}

func (sg *segmenter) accentMark(char) {
	sg.accent = true
}

// caesura marks the previous completed syllable.
func (sg *segmenter) caesura(c char) {
	n := len(sg.syllables)
	if n == 0 {
		sg.issues = append(sg.issues, issuef(ErrMarkup, sg.raw, "caesura at column %d has no preceding syllable", c.col))
		return
	}
	sg.syllables[n-1].CaesuraAfter = true
}

// flushCaesura handles a caesura written directly after a syllable: the
// marker ends the word, then marks it.
func (sg *segmenter) flushCaesura(c char) {
	sg.flushWord(c)
	sg.caesura(c)
}

func (sg *segmenter) runon(c char) {
	sg.openEnd = true
	for _, next := range sg.chars[sg.pos+1:] {
		if next.class != classSpace {
			sg.issues = append(sg.issues, issuef(ErrRunonPosition, sg.raw, "column %d", c.col))
			return
		}
	}
}

func (sg *segmenter) invalid(c char) {
	sg.issues = append(sg.issues, issuef(ErrInvalidChar, sg.raw, "%q at column %d", c.text, c.col))
}

// nextIsLetter looks past accent marks at the unit after the current one.
func (sg *segmenter) nextIsLetter() bool {
	for _, next := range sg.chars[sg.pos+1:] {
		if next.class == classAccent {
			continue
		}
		return next.class.isLetter()
	}
	return false
}

// flush turns the accumulators into a syllable. A run with display text but
// no letters is punctuation and joins the previous syllable instead.
func (sg *segmenter) flush(kind breakKind) {
	display := sg.display.String()
	if display == "" {
		return
	}
	phonetic := sg.phonetic.String()
	sg.display.Reset()
	sg.phonetic.Reset()
	accented := sg.accent
	sg.accent = false
	wordStart := sg.lastBreak == breakSpace
	sg.lastBreak = kind

	if phonetic == "" {
		if n := len(sg.syllables); n > 0 {
			sg.syllables[n-1].Display += display
		} else {
			sg.prefix += display
		}
		return
	}
	if sg.prefix != "" {
		display = sg.prefix + display
		sg.prefix = ""
	}
	sg.syllables = append(sg.syllables, Syllable{
		Display:       display,
		Phonetic:      phonetic,
		Long:          IsLong(phonetic),
		Accented:      accented,
		WordIndex:     sg.wordIndex,
		SyllableIndex: sg.wordSyllables,
		WordStart:     wordStart,
		WordEnd:       kind == breakSpace || !sg.nextIsLetter(),
		FootPosition:  -1,
		FootIndex:     -1,
	})
	sg.wordSyllables++
}
