// Package profile provides optional runtime profiling for dossier.
//
// Profiling is backed by [github.com/pkg/profile] and compiled in only with
// the "pprof" build tag. Without the tag every [Profiler] is a no-op and
// [Modes] is empty.
//
//	go build -tags pprof -o dossier .
//
// A profiler is configured with a mode and an output directory:
//
//	ctrl := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}.Start()
//	defer ctrl.Stop()
//
// Profile files are named after the mode (cpu.pprof, mem.pprof). The dossier
// command exposes the same settings as --pprof-mode and --pprof-dir, writing
// to a pprof directory under the user cache directory by default:
//
//	dossier --pprof-mode=cpu render -c case.yaml convenant.txt
//	go tool pprof -http=: ~/.cache/dossier/pprof/cpu.pprof
//
// Rendering large templates is dominated by regular expression scanning, so
// cpu and allocs are the useful modes; trace has a high overhead and suits
// short runs only.
//
// When built with the tag the package also imports [net/http/pprof], which
// registers its handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
