package scansion

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestFixtureJSON(t *testing.T) {
	f := Fixture{Line: "ar-ma", Feet: "S", Stresses: "Vo"}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["ar-ma","S","Vo"]` {
		t.Errorf("Marshal = %s", data)
	}
}

func TestParseFixture(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{`["ar-ma vi-rum-que","DT","VooVo"]`, true},
		{`["ar-ma","",""]`, true},
		{`["ar-ma","DX","Vo"]`, false},
		{`["ar-ma","DS","Vx"]`, false},
		{`["ar-ma","DS"]`, false},
		{`["ar-ma","DS","Vo","extra"]`, false},
		{`{"line":"ar-ma"}`, false},
		{`["", "S", "V"]`, false},
		{`not json`, false},
	}
	for _, tt := range tests {
		_, err := ParseFixture([]byte(tt.in))
		if tt.ok && err != nil {
			t.Errorf("ParseFixture(%s): %v", tt.in, err)
		}
		if !tt.ok && !errors.Is(err, ErrFixture) {
			t.Errorf("ParseFixture(%s) = %v, want ErrFixture", tt.in, err)
		}
	}
}

func TestRunFixtures(t *testing.T) {
	input := strings.Join([]string{
		`["Dē-li-u shunc nū-per, vic-tā ser-pen-te su-per-bus,","DSSSDS","VooVVoVooVooVo"]`,
		`["for(s ig)nā-ra de-dit, sed sae-va Cu-pī-di-ni(s ī)-ra,","SDSDDT","VoVoVoVVooVooVo"]`,
		``,
		`["Con-ti-cu-ē(re om)-nes in-ten-tī(que ō)-ra te-nē-bant.","DSSSDS","oooVVoooVVooVo"]`,
		`["Dē-lī nū-pēr vic-tā ser-pēns mag-nō.","SSSSSS","VoVoVoVoVo"]`,
		`["broken"`,
	}, "\n")

	rep, err := quietScanner().RunFixtures(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Passed != 3 || rep.Failed != 1 || rep.Errors != 1 {
		t.Errorf("report = %d passed, %d failed, %d errors; want 3, 1, 1", rep.Passed, rep.Failed, rep.Errors)
	}
	if rep.OK() {
		t.Error("OK() = true with failures")
	}
	if len(rep.Results) != 5 {
		t.Fatalf("results = %d, want 5", len(rep.Results))
	}
	miss := rep.Results[3]
	if miss.Index != 3 || miss.Actual.Feet != "SSSSS" {
		t.Errorf("mismatch result = %+v", miss)
	}
	if s := miss.String(); !strings.Contains(s, "feet: want SSSSSS, got SSSSS") || strings.Contains(s, "stresses") {
		t.Errorf("mismatch report = %q", s)
	}
	if !errors.Is(rep.Results[4].Err, ErrFixture) {
		t.Errorf("parse failure = %v", rep.Results[4].Err)
	}
}

func TestCheckFixtureNoSyntheticClose(t *testing.T) {
	// Fixtures are scanned as written: no " >" is added.
	res := quietScanner().CheckFixture(Fixture{Line: "Dē-li-u shunc nū-per, vic-tā ser-pen-te su-per-bus", Feet: "DSSSDS", Stresses: "VooVVoVooVooVo"})
	if !res.Passed() {
		t.Errorf("CheckFixture: %s", res)
	}
}

func TestWriteFixtures(t *testing.T) {
	s := quietScanner()
	lines := s.ScanText([]string{"ar-ma vi-rum-que."})
	var buf bytes.Buffer
	if err := WriteFixtures(&buf, lines); err != nil {
		t.Fatal(err)
	}
	want := `["ar-ma vi-rum-que.","DT","VooVo"]` + "\n"
	if buf.String() != want {
		t.Errorf("WriteFixtures = %q, want %q", buf.String(), want)
	}
	rep, err := s.RunFixtures(&buf)
	if err != nil || !rep.OK() {
		t.Errorf("round trip through RunFixtures: %v %+v", err, rep)
	}
}
