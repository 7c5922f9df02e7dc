package log

import (
	"testing"
	"time"
)

func TestMakeFormatTimeFunc(t *testing.T) {
	ts := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-03-01T15:04:05Z"},
		{"rfc-3339", "2024-03-01T15:04:05Z"},
		{"kitchen", "3:04PM"},
		{"2006/01/02", "2024/03/01"},
		{"", ""},
		{"none", ""},
	}

	for _, tt := range tests {
		if got := makeFormatTimeFunc(tt.layout)(ts); got != tt.want {
			t.Errorf("layout %q: got %q, want %q", tt.layout, got, tt.want)
		}
	}
}

func TestConfigClone_Independent(t *testing.T) {
	base := makeConfig(nil, WithLevel(LevelWarn))
	next := base.clone(WithLevel(LevelDebug))

	if base.level != LevelWarn {
		t.Errorf("base level changed to %v", base.level)
	}

	if next.level != LevelDebug {
		t.Errorf("clone level = %v", next.level)
	}

	if base.mutex == next.mutex {
		t.Error("clone shares mutex with base")
	}
}
