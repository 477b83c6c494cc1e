package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

const verses = "\ufeff12\n" +
	"Dē-li-u shunc nū-per, vic-tā ser-pen-te su-per-bus\n" +
	"\n" +
	"Dē-lī nū-pēr vic-tā ser-pēns mag-nō.\n"

// run parses args the way main does and runs the selected command.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	var out bytes.Buffer
	opts := append(options(&out), kong.Exit(func(int) { t.Fatalf("kong exited on %v", args) }))
	parser, err := kong.New(&cli, opts...)
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := parser.Parse(append([]string{"--log-level", "error"}, args...))
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	err = ctx.Run(&cli.Globals)
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "scansion ") {
		t.Errorf("version output = %q", out)
	}
}

func TestRender(t *testing.T) {
	input := writeFile(t, "verses.txt", verses)
	dir := t.TempDir()
	db := filepath.Join(t.TempDir(), "runs.db")

	out, err := run(t, "render", input, "--out", dir, "--db", db)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2 svgs (1 of 2 lines scanned)") || !strings.HasPrefix(out, "run ") {
		t.Errorf("render output = %q", out)
	}
	for _, name := range []string{"svg/0.svg", "svg/1.svg"} {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, []byte("<svg ")) {
			t.Errorf("%s does not start with <svg", name)
		}
	}
	page, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`src="svg/0.svg"`, `src="svg/1.svg"`, ">12:<", ">13:<"} {
		if !strings.Contains(string(page), want) {
			t.Errorf("index.html missing %s", want)
		}
	}

	out, err = run(t, "runs", "--db", db)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1/2") || !strings.Contains(out, "verses.txt") {
		t.Errorf("runs output = %q", out)
	}
	id := strings.Fields(out)[0]
	out, err = run(t, "runs", id, "--db", db)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "DSSSDS") || !strings.Contains(out, "13") {
		t.Errorf("run lines = %q", out)
	}
}

func TestRunsRequiresDatabase(t *testing.T) {
	t.Setenv("SCANSION_DB", "")
	if _, err := run(t, "runs"); err == nil {
		t.Error("runs without a database succeeded")
	}
}

func TestFixturesThenCheck(t *testing.T) {
	input := writeFile(t, "verses.txt", verses)
	out, err := run(t, "fixtures", input)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("fixtures = %q, want 2 lines", out)
	}
	want := `["Dē-li-u shunc nū-per, vic-tā ser-pen-te su-per-bus","DSSSDS","VooVVoVooVooVo"]`
	if lines[0] != want {
		t.Errorf("fixture = %s, want %s", lines[0], want)
	}

	fixtures := writeFile(t, "fixtures.jsonl", out)
	out, err = run(t, "check", fixtures)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "2 passed, 0 failed, 0 errors") {
		t.Errorf("check output = %q", out)
	}
}

func TestCheckFailure(t *testing.T) {
	fixtures := writeFile(t, "fixtures.jsonl",
		`["Dē-lī nū-pēr vic-tā ser-pēns mag-nō.","SSSSSS","VoVoVoVoVo"]`+"\n")
	out, err := run(t, "check", fixtures)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("err = %v, want errCheckFailed", err)
	}
	if !strings.Contains(out, "feet: want SSSSSS, got SSSSS") || !strings.Contains(out, "0 passed, 1 failed") {
		t.Errorf("check output = %q", out)
	}
}
