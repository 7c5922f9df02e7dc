package profile

// Profiler holds the settings of one profiling run.
type Profiler struct {
	Mode  string // one of [Modes]; empty disables profiling
	Path  string // output directory
	Quiet bool   // suppress the profiler's own log lines
}

// Stopper stops a running profiler.
type Stopper interface{ Stop() }

// Start starts the profiler. Unknown or empty modes, and builds without the
// pprof tag, return a no-op. Both Start and Stop are always safely callable.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p.Mode, p.Path, p.Quiet)
}

type ignore struct{}

func (ignore) Stop() {}
