package scansion

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrHeader is returned when a verse file does not start with a line number.
var ErrHeader = errors.New("verse file must start with a line number")

// Verse is one line of a verse file with its number in the poem.
type Verse struct {
	Number int
	Text   string
}

// LoadVerses reads a verse file from disk. See ReadVerses.
func LoadVerses(path string) ([]Verse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open verses: %w", err)
	}
	defer f.Close()
	return ReadVerses(f)
}

// ReadVerses reads a verse file: the first non-blank line holds the number
// of the first verse, and every following non-blank line is a verse,
// numbered consecutively. Lines are trimmed; blank lines are skipped and do
// not take a number.
func ReadVerses(r io.Reader) ([]Verse, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var verses []Verse
	next, header := 0, false
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" {
			continue
		}
		if !header {
			n, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %q", ErrHeader, lineNo, line)
			}
			next, header = n, true
			continue
		}
		verses = append(verses, Verse{Number: next, Text: line})
		next++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read verses: %w", err)
	}
	if !header {
		return nil, ErrHeader
	}
	return verses, nil
}
