package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitAndLevelString(t *testing.T) {
	defer Init("info")
	Init("debug")
	if got := LevelString(); got != "debug" {
		t.Fatalf("LevelString() = %q, want %q", got, "debug")
	}
	Init("WARNING")
	if got := LevelString(); got != "warn" {
		t.Fatalf("LevelString() = %q, want %q", got, "warn")
	}
	Init(" Error ")
	if got := LevelString(); got != "error" {
		t.Fatalf("LevelString() = %q, want %q", got, "error")
	}
	Init("nonsense")
	if got := LevelString(); got != "info" {
		t.Fatalf("LevelString() = %q, want %q for unknown input", got, "info")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer Restore(prev)
	defer Init("info")

	Init("warn")
	Debugf("debug-msg")
	Infof("info-msg")
	Warnf("warn-msg")
	Errorf("error-msg")

	out := buf.String()
	if strings.Contains(out, "debug-msg") || strings.Contains(out, "info-msg") {
		t.Fatalf("debug/info messages should be suppressed at warn level: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn-msg") {
		t.Fatalf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error-msg") {
		t.Fatalf("error message missing: %q", out)
	}
}

func TestNamedLoggerPrefixesComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer Restore(prev)
	defer Init("info")

	Init("debug")
	l := Named("session")
	l.Debugf("refresh armed in %s", "55m")
	l.Warnf("store unavailable")

	out := buf.String()
	if !strings.Contains(out, "[DEBUG] session: refresh armed in 55m") {
		t.Fatalf("debug line missing component prefix: %q", out)
	}
	if !strings.Contains(out, "[WARN] session: store unavailable") {
		t.Fatalf("warn line missing component prefix: %q", out)
	}

	// named loggers honour the global level too
	buf.Reset()
	Init("error")
	l.Infof("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info from named logger should be suppressed at error level: %q", buf.String())
	}
}
