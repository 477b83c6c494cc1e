package scansion

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// charClass is the category of one classified input character (or digraph).
type charClass int

const (
	classInvalid charClass = iota
	classVowel
	classLongVowel
	classConsonant
	classPunct
	classSpace
	classHyphen
	classOpen
	classClose
	classAccent
	classCaesura
	classRunon
	numClasses
)

var classNames = [numClasses]string{
	"invalid", "vowel", "long vowel", "consonant", "punctuation", "space",
	"hyphen", "open paren", "close paren", "accent", "caesura", "runon",
}

func (c charClass) String() string {
	if c < 0 || c >= numClasses {
		return fmt.Sprintf("charClass(%d)", int(c))
	}
	return classNames[c]
}

func (c charClass) isLetter() bool {
	return c == classVowel || c == classLongVowel || c == classConsonant
}

// consonants lists single consonant letters; digraphs are matched first by
// the lexer so that "qu", "ch", "ph" etc. classify as one unit.
const consonants = "bcdfghjklmnpqrstvxz"

// punctuation never forms a syllable of its own.
const punctuation = ".,;:?!“”‘’\"'—"

// charLexer classifies markup characters, longest match first. The caesura
// token swallows its formatting spacer (up to two spaces or slashes); any
// other character falls through to Invalid.
var charLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Caesura", Pattern: `/[ /]{0,2}`},
	{Name: "Runon", Pattern: `>`},
	{Name: "Accent", Pattern: `\^`},
	{Name: "Open", Pattern: `\(`},
	{Name: "Close", Pattern: `\)`},
	{Name: "Space", Pattern: ` `},
	{Name: "Hyphen", Pattern: `-`},
	{Name: "LongVowel", Pattern: `(?i)[āēīōūȳ]`},
	{Name: "Consonant", Pattern: `(?i)quu|qu|ch|gn|ph|rh|th|vu|[` + consonants + `]`},
	{Name: "Vowel", Pattern: `(?i)[aeiouy]`},
	{Name: "Punct", Pattern: `[.,;:?!“”‘’"'—]`},
	{Name: "Invalid", Pattern: `(?s:.)`},
})

// tokenClasses maps the lexer's token types onto charClass.
var tokenClasses = func() map[lexer.TokenType]charClass {
	names := map[string]charClass{
		"Caesura":   classCaesura,
		"Runon":     classRunon,
		"Accent":    classAccent,
		"Open":      classOpen,
		"Close":     classClose,
		"Space":     classSpace,
		"Hyphen":    classHyphen,
		"LongVowel": classLongVowel,
		"Consonant": classConsonant,
		"Vowel":     classVowel,
		"Punct":     classPunct,
		"Invalid":   classInvalid,
	}
	out := make(map[lexer.TokenType]charClass, len(names))
	for name, tt := range charLexer.Symbols() {
		if c, ok := names[name]; ok {
			out[tt] = c
		}
	}
	return out
}()

// char is one classified unit of input.
type char struct {
	class charClass
	text  string
	// col is the 1-based column of the unit in the line.
	col int
}

// classify splits line into classified units.
func classify(line string) ([]char, error) {
	lex, err := charLexer.LexString("", line)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	toks, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	out := make([]char, 0, len(toks))
	for _, tok := range toks {
		if tok.EOF() {
			break
		}
		c, ok := tokenClasses[tok.Type]
		if !ok {
			c = classInvalid
		}
		out = append(out, char{class: c, text: tok.Value, col: tok.Pos.Column})
	}
	return out, nil
}

// isLetterRune reports whether r (lowercase) belongs to the verse alphabet.
func isLetterRune(r rune) bool {
	return strings.ContainsRune(shortVowels+longVowels+consonants, r)
}
