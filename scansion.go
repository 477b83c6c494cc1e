// Package scansion scans Latin dactylic hexameter written in a light
// syllable markup and draws each scanned line as a foot diagram.
//
// Markup: syllables are separated by "-" inside a word and by spaces between
// words; "(X Y)" is an elision group; "^" forces stress on the following
// syllable; "/" marks a caesura after the previous syllable; ">" at the end of
// a line marks it as running on into the next.
package scansion

import (
	"errors"
	"log/slog"
	"strings"
)

// Scanner runs the scansion pipeline: segmentation, stress assignment and
// foot scanning. A Scanner holds no per-line state and is safe for
// concurrent use.
type Scanner struct {
	log      *slog.Logger
	geometry Geometry
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger diagnostics are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.log = l
		}
	}
}

// WithGeometry overrides the diagram geometry.
func WithGeometry(g Geometry) Option {
	return func(s *Scanner) { s.geometry = g }
}

// New returns a ready-to-use Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{log: slog.Default(), geometry: DefaultGeometry()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanLine scans a single line. openStart is the runon flag carried over from
// the previous line. Diagnostics are kept on the returned Line and logged;
// none of them is returned as an error.
func (s *Scanner) ScanLine(raw string, openStart bool) *Line {
	return s.scan(0, raw, openStart)
}

// ScanText scans lines in order, closing each with CloseLine and carrying
// the runon flag from every line to the next.
func (s *Scanner) ScanText(lines []string) []*Line {
	verses := make([]Verse, len(lines))
	for i, l := range lines {
		verses[i] = Verse{Number: i + 1, Text: l}
	}
	return s.ScanVerses(verses)
}

// ScanVerses scans numbered verses in document order.
func (s *Scanner) ScanVerses(verses []Verse) []*Line {
	out := make([]*Line, 0, len(verses))
	open := false
	for _, v := range verses {
		line := s.scan(v.Number, CloseLine(v.Text), open)
		open = line.OpenEnd
		out = append(out, line)
	}
	return out
}

// Render lays out a scanned line as a diagram.
func (s *Scanner) Render(l *Line) *Diagram {
	return RenderDiagram(l, s.geometry)
}

func (s *Scanner) scan(number int, raw string, openStart bool) *Line {
	seg := Segment(raw, openStart)
	line := &Line{Number: number, Raw: raw, OpenEnd: seg.OpenEnd}
	line.Issues = append(line.Issues, seg.Issues...)

	syls, issues := AssignStress(raw, seg.Syllables)
	line.Issues = append(line.Issues, issues...)

	syls, feet, issues := ScanFeet(raw, syls)
	line.Issues = append(line.Issues, issues...)
	line.Syllables = syls
	line.Feet = feet

	s.report(line)
	return line
}

// report logs the diagnostics of a line: scansion violations as errors,
// everything else as warnings.
func (s *Scanner) report(l *Line) {
	for _, err := range l.Issues {
		attrs := []any{
			slog.Int("number", l.Number),
			slog.String("line", l.Raw),
			slog.Any("err", err),
		}
		var se *ScanError
		if errors.As(err, &se) && se.Syllable != "" {
			attrs = append(attrs, slog.String("syllable", se.Syllable))
		}
		if isFatal(err) {
			s.log.Error("scansion failed", attrs...)
		} else {
			s.log.Warn("scansion warning", attrs...)
		}
	}
	if len(l.Issues) == 0 {
		s.log.Debug("line scanned",
			slog.Int("number", l.Number),
			slog.String("feet", l.FootTypes()),
			slog.String("stresses", l.Stresses()))
	}
}

// CloseLine trims a line and, when it ends neither in punctuation nor in a
// runon marker, appends " >": a line without a closing mark runs on.
func CloseLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return line
	}
	r := []rune(line)
	last := r[len(r)-1]
	if last == '>' || strings.ContainsRune(punctuation, last) {
		return line
	}
	return line + " >"
}
