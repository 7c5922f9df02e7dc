//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Modes returns the supported profiling modes, sorted. The option "quiet" is
// not a mode and is omitted.
var Modes = sync.OnceValue(
	func() []string {
		m := maps.Clone(mode)
		delete(m, "quiet")

		return slices.Sorted(maps.Keys(m))
	},
)

var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
	"quiet":     profile.Quiet,
}

// option adds settings to the list passed to [profile.Start].
type option func([]func(*profile.Profile)) []func(*profile.Profile)

func start(m, path string, quiet bool) Stopper {
	fn, ok := mode[m]
	if !ok || m == "quiet" {
		return ignore{}
	}

	opts := []func(*profile.Profile){fn}

	for _, o := range []option{withPath(path), withQuiet(quiet), withNoShutdownHook()} {
		opts = o(opts)
	}

	return profile.Start(opts...)
}

func withPath(p string) option {
	return func(opts []func(*profile.Profile)) []func(*profile.Profile) {
		if p != "" {
			opts = append(opts, profile.ProfilePath(p))
		}

		return opts
	}
}

func withQuiet(v bool) option {
	return func(opts []func(*profile.Profile)) []func(*profile.Profile) {
		if v {
			opts = append(opts, profile.Quiet)
		}

		return opts
	}
}

// withNoShutdownHook leaves signal handling to the caller, which stops the
// profiler on return from the command.
func withNoShutdownHook() option {
	return func(opts []func(*profile.Profile)) []func(*profile.Profile) {
		return append(opts, profile.NoShutdownHook)
	}
}
