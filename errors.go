package scansion

import (
	"errors"
	"fmt"
)

// Diagnostic kinds. Every issue recorded on a Line wraps one of these.
var (
	ErrInvalidChar     = errors.New("unrecognized character")
	ErrRunonPosition   = errors.New("runon marker not at end of line")
	ErrMarkup          = errors.New("malformed markup")
	ErrFootStartsShort = errors.New("foot starts with short syllable")
	ErrIllegalEnding   = errors.New("short syllable cannot continue foot")
	ErrFootCount       = errors.New("line does not have six feet")
	ErrStressBounds    = errors.New("stress target before line start")
	ErrEmptyLine       = errors.New("line has no syllables")
)

// ScanError locates a diagnostic within a line.
type ScanError struct {
	Kind error
	// Line is the raw line being scanned.
	Line string
	// Syllable is the display text of the offending syllable, if any.
	Syllable string
	// Index is the syllable index within the line, or -1.
	Index int
	Msg   string
}

func (e *ScanError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Syllable != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Syllable)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg
}

func (e *ScanError) Unwrap() error { return e.Kind }

func issuef(kind error, line string, format string, args ...any) *ScanError {
	return &ScanError{Kind: kind, Line: line, Index: -1, Msg: fmt.Sprintf(format, args...)}
}

func syllableIssue(kind error, line string, syls []Syllable, i int) *ScanError {
	e := &ScanError{Kind: kind, Line: line, Index: i}
	if i >= 0 && i < len(syls) {
		e.Syllable = syls[i].Display
		e.Msg = fmt.Sprintf("phonetic %q", syls[i].Phonetic)
	}
	return e
}

// isFatal reports whether err halted the foot scanner.
func isFatal(err error) bool {
	return errors.Is(err, ErrFootStartsShort) || errors.Is(err, ErrIllegalEnding) || errors.Is(err, ErrEmptyLine)
}
