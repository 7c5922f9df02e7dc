package profile

import "testing"

func TestProfiler_DisabledIsNoop(t *testing.T) {
	for _, p := range []Profiler{
		{},
		{Mode: "", Path: t.TempDir()},
		{Mode: "no-such-mode", Path: t.TempDir(), Quiet: true},
	} {
		ctrl := p.Start()
		if ctrl == nil {
			t.Fatalf("Start(%+v) = nil", p)
		}

		ctrl.Stop()
		ctrl.Stop()
	}
}

func TestModes_ExcludesQuiet(t *testing.T) {
	for _, m := range Modes() {
		if m == "quiet" {
			t.Error("Modes() contains quiet")
		}
	}
}
