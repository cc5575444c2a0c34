package tuilog

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func fixedLogger(buf *bytes.Buffer, min Level) *Logger {
	l := New(buf, min)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC) }
	return l
}

func TestLoggerFormatsKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LevelDebug)

	l.Info("dataset loaded", "path", "/tmp/a.csv", "rows", 5)

	got := buf.String()
	want := "03:04:05.006 [INFO] dataset loaded path=/tmp/a.csv rows=5\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoggerLevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[WARN] shown") {
		t.Errorf("unexpected first line %q", lines[0])
	}
}

func TestLoggerOddKeyvals(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LevelDebug)

	l.Debug("odd", "a", 1, "dangling")
	if !strings.Contains(buf.String(), "a=1 EXTRA=dangling") {
		t.Errorf("dangling value not preserved: %q", buf.String())
	}
}

func TestDisabledLoggerIsSilent(t *testing.T) {
	l := &Logger{now: time.Now}
	l.Info("nothing")
	if l.Enabled() {
		t.Error("zero logger should be disabled")
	}
	done := l.Timed("op")
	done()
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		" warn ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelDebug,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
