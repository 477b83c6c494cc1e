package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitConsole(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Options{Level: "debug", Console: &buf})
	WithOperation(l.With(slog.String("component", "scanner")), "scan").
		Warn("scansion warning", slog.Int("number", 3), slog.String("line", "ar-ma"))

	out := buf.String()
	for _, want := range []string{"WRN scansion warning", "app=scansion", "component=scanner", "op=scan", "number=3", "line=ar-ma"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output %q missing %q", out, want)
		}
	}
	if slog.Default() != l {
		t.Error("Init did not install the default logger")
	}
}

func TestInitLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Options{Level: "warn", Console: &buf})
	l.Info("hidden")
	l.Error("shown", slog.String("msg2", "a b"))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, `ERR shown`) || !strings.Contains(out, `msg2="a b"`) {
		t.Errorf("output = %q", out)
	}
}

func TestInitJSONAndFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "scansion.log")
	l := Init(Options{Level: "info", Format: "json", File: path, Console: &buf})
	WithOperation(l, "render").Info("diagram written", slog.String("file", "svg/0.svg"))
	if err := Close(); err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("console output is not JSON: %v", err)
	}
	if m["msg"] != "diagram written" || m["op"] != "render" {
		t.Errorf("console record = %v", m)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	m = nil
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("file record is not JSON: %v", err)
	}
	if m["app"] != "scansion" || m["file"] != "svg/0.svg" {
		t.Errorf("file record = %v", m)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvSource, "yes")
	t.Setenv(EnvFile, "/tmp/x.log")
	o := FromEnv()
	if o.Level != "debug" || o.Format != "json" || !o.AddSource || o.File != "/tmp/x.log" {
		t.Errorf("FromEnv() = %+v", o)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConsoleGroups(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Options{Console: &buf})
	l.WithGroup("req").Info("served", slog.Int("status", 200))
	if !strings.Contains(buf.String(), "req.status=200") {
		t.Errorf("output = %q", buf.String())
	}
}
