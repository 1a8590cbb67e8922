package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func decode(t *testing.T, line string) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", line, err)
	}

	return m
}

func TestMake_Defaults(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if got := logger.Level(); got != LevelInfo {
		t.Errorf("Level() = %v, want info", got)
	}

	if got := logger.Format(); got != FormatJSON {
		t.Errorf("Format() = %v, want json", got)
	}

	logger.Info("hello", slog.String("file", "main.dps"))

	m := decode(t, buf.String())
	if m["msg"] != "hello" || m["file"] != "main.dps" || m["level"] != "INFO" {
		t.Errorf("unexpected record: %v", m)
	}
}

func TestMake_LevelFilters(t *testing.T) {
	tests := []struct {
		level Level
		log   func(Logger)
		want  bool
	}{
		{LevelInfo, func(l Logger) { l.Debug("x") }, false},
		{LevelDebug, func(l Logger) { l.Debug("x") }, true},
		{LevelDebug, func(l Logger) { l.Trace("x") }, false},
		{LevelTrace, func(l Logger) { l.Trace("x") }, true},
		{LevelError, func(l Logger) { l.Warn("x") }, false},
		{LevelError, func(l Logger) { l.Error("x") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.level)))

			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMake_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithLevel(LevelTrace)).Trace("deep")

	if m := decode(t, buf.String()); m["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", m["level"])
	}
}

func TestWithTimeLayout(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithTimeLayout("none")).Info("x")

	if _, ok := decode(t, buf.String())["time"]; ok {
		t.Error("time present with layout none")
	}

	buf.Reset()
	Make(&buf, WithTimeLayout("DateTime")).Info("x")

	s, _ := decode(t, buf.String())["time"].(string)
	if len(s) != len("2006-01-02 15:04:05") {
		t.Errorf("time = %q, want DateTime layout", s)
	}
}

func TestWithCaller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true)).Info("x")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("caller not reported: %s", buf.String())
	}
}

func TestWithFormatText(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatText), WithTimeLayout("none")).
		Info("built", slog.Int("functions", 3))

	if got, want := buf.String(), "level=INFO msg=built functions=3\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLogger_WithAndWrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf)
	child := base.With(slog.String("ns", "demo"))

	child.Info("a")
	base.Info("b")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	if decode(t, lines[0])["ns"] != "demo" {
		t.Error("With attribute missing")
	}

	if _, ok := decode(t, lines[1])["ns"]; ok {
		t.Error("With modified the parent logger")
	}

	wrapped := base.Wrap(WithLevel(LevelError))
	if wrapped.Level() != LevelError || base.Level() != LevelInfo {
		t.Errorf("Wrap levels = %v/%v", wrapped.Level(), base.Level())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Info("ignored")

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Error("zero logger does not report defaults")
	}
}

type valued struct{ file string }

func (v valued) Error() string { return "failed" }

func (v valued) LogValue() slog.Value {
	return slog.GroupValue(slog.String("file", v.file))
}

func TestPrettyHandler(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true

	t.Cleanup(func() { color.NoColor = saved })

	var err error = valued{file: "a.dps"}

	tests := []struct {
		name   string
		format Format
		want   string
	}{
		{"text", FormatText, `level=INFO "compile failed" error.file=a.dps n=1` + "\n"},
		{"json", FormatJSON, `{"level":"INFO","msg":"compile failed","error.file":"a.dps","n":1}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			Make(&buf, WithFormat(tt.format), WithPretty(true), WithTimeLayout("")).
				Info("compile failed", slog.Any("error", err), slog.Int("n", 1))

			if got := buf.String(); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"text", FormatText},
		{" JSON ", FormatJSON},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfig_Default(t *testing.T) {
	saved := Default()

	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = saved
		defaultMu.Unlock()
	})

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelDebug))
	Debug("visible")
	Trace("hidden")

	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("got %d records, want 1: %s", got, buf.String())
	}
}
