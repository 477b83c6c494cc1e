package scansion

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrFixture marks a fixture entry that could not be parsed or validated.
var ErrFixture = errors.New("malformed fixture")

//go:embed fixture.schema.json
var fixtureSchemaJSON string

var fixtureSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(fixtureSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("scansion: fixture schema: %v", err))
	}
	return s
}()

// Fixture is the compact regression triple of a line. It is encoded as a
// JSON array: ["line", "DSSSDS", "VooV..."].
type Fixture struct {
	Line     string
	Feet     string
	Stresses string
}

func (f Fixture) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{f.Line, f.Feet, f.Stresses})
}

func (f *Fixture) UnmarshalJSON(data []byte) error {
	var t [3]string
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	f.Line, f.Feet, f.Stresses = t[0], t[1], t[2]
	return nil
}

// ParseFixture validates one encoded fixture against the fixture schema
// and decodes it.
func ParseFixture(data []byte) (Fixture, error) {
	res, err := fixtureSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Fixture{}, fmt.Errorf("%w: %v", ErrFixture, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Fixture{}, fmt.Errorf("%w: %s", ErrFixture, strings.Join(msgs, "; "))
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("%w: %v", ErrFixture, err)
	}
	return f, nil
}

// FixtureResult is the outcome of one fixture entry.
type FixtureResult struct {
	// Index is the 0-based entry number, blank lines not counted.
	Index    int
	Expected Fixture
	Actual   Fixture
	// Err is set when the entry could not be parsed; Actual is then empty.
	Err error
}

// Passed reports whether the entry parsed and matched.
func (r FixtureResult) Passed() bool {
	return r.Err == nil && r.Expected.Feet == r.Actual.Feet && r.Expected.Stresses == r.Actual.Stresses
}

func (r FixtureResult) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("fixture %d: %v", r.Index, r.Err)
	case r.Passed():
		return fmt.Sprintf("fixture %d: ok", r.Index)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "fixture %d: %s", r.Index, r.Expected.Line)
	if r.Expected.Feet != r.Actual.Feet {
		fmt.Fprintf(&b, "\n  feet: want %s, got %s", r.Expected.Feet, r.Actual.Feet)
	}
	if r.Expected.Stresses != r.Actual.Stresses {
		fmt.Fprintf(&b, "\n  stresses: want %s, got %s", r.Expected.Stresses, r.Actual.Stresses)
	}
	return b.String()
}

// FixtureReport summarizes a fixture run.
type FixtureReport struct {
	Results []FixtureResult
	Passed  int
	// Failed counts mismatches, Errors entries that did not parse.
	Failed int
	Errors int
}

// OK reports whether every entry passed.
func (r *FixtureReport) OK() bool { return r.Failed == 0 && r.Errors == 0 }

// CheckFixture scans f's line as written, with no runon carried in and no
// synthetic close, and compares the result.
func (s *Scanner) CheckFixture(f Fixture) FixtureResult {
	line := s.scan(0, f.Line, false)
	return FixtureResult{Expected: f, Actual: line.Fixture()}
}

// RunFixtures reads JSON-lines fixtures from r and checks each of them.
// Bad entries and mismatches are counted and never stop the run; only a
// read error is returned.
func (s *Scanner) RunFixtures(r io.Reader) (*FixtureReport, error) {
	rep := &FixtureReport{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	idx := 0
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var res FixtureResult
		f, err := ParseFixture([]byte(text))
		if err != nil {
			res = FixtureResult{Err: err}
		} else {
			res = s.CheckFixture(f)
		}
		res.Index = idx
		idx++

		switch {
		case res.Err != nil:
			rep.Errors++
			s.log.Error("fixture error", slog.Int("index", res.Index), slog.Any("err", res.Err))
		case res.Passed():
			rep.Passed++
		default:
			rep.Failed++
			s.log.Warn("fixture mismatch",
				slog.Int("index", res.Index),
				slog.String("line", f.Line),
				slog.String("want_feet", res.Expected.Feet),
				slog.String("got_feet", res.Actual.Feet),
				slog.String("want_stresses", res.Expected.Stresses),
				slog.String("got_stresses", res.Actual.Stresses))
		}
		rep.Results = append(rep.Results, res)
	}
	if err := sc.Err(); err != nil {
		return rep, fmt.Errorf("read fixtures: %w", err)
	}
	return rep, nil
}

// WriteFixtures writes one JSON-encoded fixture per line.
func WriteFixtures(w io.Writer, lines []*Line) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, l := range lines {
		if err := enc.Encode(l.Fixture()); err != nil {
			return fmt.Errorf("write fixture: %w", err)
		}
	}
	return nil
}
