package log

import (
	"slices"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{" TRACE ", LevelTrace},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if got := LevelTrace.String(); got != "trace" {
		t.Errorf("LevelTrace.String() = %q", got)
	}

	if got := (LevelWarn + 1).String(); got != "warn+1" {
		t.Errorf("(LevelWarn+1).String() = %q", got)
	}
}

func TestLevels(t *testing.T) {
	got := slices.Collect(Levels())
	want := []string{"trace", "debug", "info", "warn", "error"}

	if !slices.Equal(got, want) {
		t.Errorf("Levels() = %v, want %v", got, want)
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("TEXT") != FormatText {
		t.Error("expected text format")
	}

	if ParseFormat("json") != FormatJSON {
		t.Error("expected json format")
	}

	if ParseFormat("yaml") != DefaultFormat {
		t.Error("expected default format for unknown input")
	}

	if got := slices.Collect(Formats()); len(got) != 2 {
		t.Errorf("Formats() = %v", got)
	}
}
