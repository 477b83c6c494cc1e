package scansion

import (
	"errors"
	"testing"
)

func displays(syls []Syllable) []string {
	out := make([]string, len(syls))
	for i, s := range syls {
		out[i] = s.Display
	}
	return out
}

func phonetics(syls []Syllable) []string {
	out := make([]string, len(syls))
	for i, s := range syls {
		out[i] = s.Phonetic
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasIssue(issues []error, kind error) bool {
	for _, err := range issues {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func TestSegmentWords(t *testing.T) {
	seg := Segment("Dē-li-us hunc nū-per,", false)
	if len(seg.Issues) != 0 {
		t.Fatalf("unexpected issues: %v", seg.Issues)
	}
	wantDisplay := []string{"Dē", "li", "us", "hunc", "nū", "per,"}
	if got := displays(seg.Syllables); !equalStrings(got, wantDisplay) {
		t.Fatalf("displays = %q, want %q", got, wantDisplay)
	}
	wantPhonetic := []string{"dē", "li", "us", "hunc", "nū", "per"}
	if got := phonetics(seg.Syllables); !equalStrings(got, wantPhonetic) {
		t.Errorf("phonetics = %q, want %q", got, wantPhonetic)
	}

	tests := []struct {
		word, index        int
		start, end, isLong bool
	}{
		{0, 0, true, false, true},
		{0, 1, false, false, false},
		{0, 2, false, true, true},
		{1, 0, true, true, true},
		{2, 0, true, false, true},
		{2, 1, false, true, true},
	}
	for i, tt := range tests {
		s := seg.Syllables[i]
		if s.WordIndex != tt.word || s.SyllableIndex != tt.index {
			t.Errorf("%q: word %d.%d, want %d.%d", s.Display, s.WordIndex, s.SyllableIndex, tt.word, tt.index)
		}
		if s.WordStart != tt.start || s.WordEnd != tt.end {
			t.Errorf("%q: start/end = %v/%v, want %v/%v", s.Display, s.WordStart, s.WordEnd, tt.start, tt.end)
		}
		if s.Long != tt.isLong {
			t.Errorf("%q: Long = %v, want %v", s.Display, s.Long, tt.isLong)
		}
		if s.FootIndex != -1 || s.FootPosition != -1 || s.Accented {
			t.Errorf("%q: segmenter set stress or foot data", s.Display)
		}
	}
}

func TestSegmentElision(t *testing.T) {
	seg := Segment("Con-ti-cu-ē(re om)-nes in-ten-tī(que ō)-ra", false)
	if len(seg.Issues) != 0 {
		t.Fatalf("unexpected issues: %v", seg.Issues)
	}
	wantDisplay := []string{"Con", "ti", "cu", "ē(re", "om)", "nes", "in", "ten", "tī(que", "ō)", "ra"}
	if got := displays(seg.Syllables); !equalStrings(got, wantDisplay) {
		t.Fatalf("displays = %q, want %q", got, wantDisplay)
	}
	wantPhonetic := []string{"con", "ti", "cu", "ē", "rom", "nes", "in", "ten", "tī", "qō", "ra"}
	if got := phonetics(seg.Syllables); !equalStrings(got, wantPhonetic) {
		t.Errorf("phonetics = %q, want %q", got, wantPhonetic)
	}
	for i, rem := range map[int]string{3: "re", 8: "que"} {
		s := seg.Syllables[i]
		if !s.Elided || s.ElidedRemainder != rem {
			t.Errorf("%q: Elided = %v remainder %q, want true %q", s.Display, s.Elided, s.ElidedRemainder, rem)
		}
		if !s.WordEnd {
			t.Errorf("%q: an elided syllable ends its word", s.Display)
		}
	}
	// The group syllable starts the next word.
	if s := seg.Syllables[4]; !s.WordStart || s.WordIndex != 1 || s.SyllableIndex != 0 {
		t.Errorf("%q: start %v word %d.%d, want start of word 1", s.Display, s.WordStart, s.WordIndex, s.SyllableIndex)
	}
}

func TestSegmentElisionWithoutVowel(t *testing.T) {
	seg := Segment("for(s ig)nā-ra de-dit, sed sae-va Cu-pī-di-ni(s ī)-ra,", false)
	if len(seg.Issues) != 0 {
		t.Fatalf("unexpected issues: %v", seg.Issues)
	}
	wantPhonetic := []string{"for", "ig", "nā", "ra", "de", "dit", "sed", "sae", "va", "cu", "pī", "di", "ni", "ī", "ra"}
	if got := phonetics(seg.Syllables); !equalStrings(got, wantPhonetic) {
		t.Fatalf("phonetics = %q, want %q", got, wantPhonetic)
	}
	for _, s := range seg.Syllables {
		if s.Elided {
			t.Errorf("%q elided, but the group's first fragment has no vowel", s.Display)
		}
	}
	// ig)nā-ra is one word: indices stay contiguous across the group.
	for i, want := range []int{0, 1, 2} {
		if got := seg.Syllables[1+i].SyllableIndex; got != want {
			t.Errorf("%q: SyllableIndex = %d, want %d", seg.Syllables[1+i].Display, got, want)
		}
	}
}

func TestSegmentContiguousIndices(t *testing.T) {
	lines := []string{
		"Dē-li-u shunc nū-per, vic-tā ser-pen-te su-per-bus,",
		"for(s ig)nā-ra de-dit, sed sae-va Cu-pī-di-ni(s ī)-ra,",
		"Con-ti-cu-ē(re om)-nes in-ten-tī(que ō)-ra te-nē-bant.",
	}
	for _, line := range lines {
		seg := Segment(line, false)
		next := map[int]int{}
		for _, s := range seg.Syllables {
			if s.SyllableIndex != next[s.WordIndex] {
				t.Errorf("%q: %q has index %d, want %d", line, s.Display, s.SyllableIndex, next[s.WordIndex])
			}
			next[s.WordIndex]++
		}
	}
}

func TestSegmentCaesura(t *testing.T) {
	for _, line := range []string{
		"nū-per, / vic-tā",
		"nū-per, /  vic-tā",
		"nū-per,/ vic-tā",
	} {
		seg := Segment(line, false)
		if len(seg.Issues) != 0 {
			t.Errorf("Segment(%q) issues: %v", line, seg.Issues)
			continue
		}
		if got := displays(seg.Syllables); !equalStrings(got, []string{"nū", "per,", "vic", "tā"}) {
			t.Errorf("Segment(%q) displays = %q", line, got)
			continue
		}
		for i, s := range seg.Syllables {
			if s.CaesuraAfter != (i == 1) {
				t.Errorf("Segment(%q): %q CaesuraAfter = %v", line, s.Display, s.CaesuraAfter)
			}
		}
		if !seg.Syllables[1].WordEnd || !seg.Syllables[2].WordStart {
			t.Errorf("Segment(%q): caesura must fall between words", line)
		}
	}

	seg := Segment("/ vic-tā", false)
	if !hasIssue(seg.Issues, ErrMarkup) {
		t.Errorf("leading caesura: issues = %v, want ErrMarkup", seg.Issues)
	}
}

func TestSegmentAccent(t *testing.T) {
	seg := Segment("vic-tā ^ser-pen-te", false)
	for i, s := range seg.Syllables {
		if s.Accented != (i == 2) {
			t.Errorf("%q: Accented = %v", s.Display, s.Accented)
		}
	}
	// An accent mark between syllables does not end the word.
	seg = Segment("ser-^pen-te", false)
	if s := seg.Syllables[0]; s.WordEnd {
		t.Errorf("%q: WordEnd set before an accented syllable", s.Display)
	}
	if s := seg.Syllables[1]; !s.Accented {
		t.Errorf("%q: Accented = false", s.Display)
	}
}

func TestSegmentRunon(t *testing.T) {
	seg := Segment("su-per-bus >", true)
	if !seg.OpenEnd {
		t.Fatal("OpenEnd = false, want true")
	}
	first, last := seg.Syllables[0], seg.Syllables[len(seg.Syllables)-1]
	if !first.OpenStart {
		t.Error("first syllable: OpenStart = false, want true")
	}
	if !last.OpenEnd || last.Display != "bus" {
		t.Errorf("last syllable %q: OpenEnd = %v", last.Display, last.OpenEnd)
	}
	if len(seg.Issues) != 0 {
		t.Errorf("issues: %v", seg.Issues)
	}

	seg = Segment("su-per > bus", false)
	if !hasIssue(seg.Issues, ErrRunonPosition) {
		t.Errorf("mid-line runon: issues = %v, want ErrRunonPosition", seg.Issues)
	}
	if !seg.OpenEnd {
		t.Error("mid-line runon: OpenEnd = false, want true")
	}
}

func TestSegmentPunctuation(t *testing.T) {
	seg := Segment("“Ar-ma, vi-rum!”", false)
	want := []string{"“Ar", "ma,", "vi", "rum!”"}
	if got := displays(seg.Syllables); !equalStrings(got, want) {
		t.Errorf("displays = %q, want %q", got, want)
	}
	if got := seg.Syllables[0].Phonetic; got != "ar" {
		t.Errorf("phonetic = %q, want %q", got, "ar")
	}
}

func TestSegmentFolding(t *testing.T) {
	seg := Segment("cæ-lŭm", false)
	if got := phonetics(seg.Syllables); !equalStrings(got, []string{"cae", "lum"}) {
		t.Errorf("phonetics = %q", got)
	}
}

func TestSegmentErrors(t *testing.T) {
	tests := []struct {
		line string
		kind error
	}{
		{"ar1ma", ErrInvalidChar},
		{"ar-ma) vi", ErrMarkup},
		{"ar(ma vi", ErrMarkup},
		{"ar(m(a i)", ErrMarkup},
		{"(a e) vi", ErrMarkup},
	}
	for _, tt := range tests {
		seg := Segment(tt.line, false)
		if !hasIssue(seg.Issues, tt.kind) {
			t.Errorf("Segment(%q) issues = %v, want %v", tt.line, seg.Issues, tt.kind)
		}
	}

	// The bad character is dropped and the syllable survives.
	seg := Segment("ar1ma", false)
	if got := displays(seg.Syllables); !equalStrings(got, []string{"arma"}) {
		t.Errorf("displays = %q, want [\"arma\"]", got)
	}
}

func TestSegmenterTransitions(t *testing.T) {
	chars, err := classify("a(e i)")
	if err != nil {
		t.Fatal(err)
	}
	want := []segState{stateInWord, stateInParenFirst, stateInParenFirst, stateInParenSecond, stateInParenSecond, stateIdle}
	sg := newSegmenter("a(e i)")
	sg.chars = chars
	for i, c := range chars {
		sg.pos = i
		sg.step(c)
		if sg.state != want[i] {
			t.Errorf("after %q: state = %v, want %v", c.text, sg.state, want[i])
		}
	}
	if len(sg.syllables) != 2 {
		t.Fatalf("syllables = %d, want 2", len(sg.syllables))
	}
	if s := sg.syllables[0]; !s.Elided || s.ElidedRemainder != "e" {
		t.Errorf("%q: Elided = %v remainder %q", s.Display, s.Elided, s.ElidedRemainder)
	}
}

func TestSegmentReentrant(t *testing.T) {
	a := Segment("ar-ma vi-rum-que", false)
	b := Segment("ar-ma vi-rum-que", false)
	if !equalStrings(displays(a.Syllables), displays(b.Syllables)) {
		t.Error("two segmentations of one line differ")
	}
	a.Syllables[0].Display = "x"
	if b.Syllables[0].Display == "x" {
		t.Error("segmentations share syllables")
	}
}
