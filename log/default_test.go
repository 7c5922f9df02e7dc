package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConfig_UpdatesDefault(t *testing.T) {
	prev := Default()

	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = prev
		defaultMu.Unlock()
	})

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithFormat(FormatText), WithLevel(LevelDebug))
	Debug("via default", slog.String("k", "v"))

	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("default logger output = %q", buf.String())
	}

	if Default().Format() != FormatText {
		t.Error("default format not updated")
	}
}
