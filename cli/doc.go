// Package cli contains the command line interface for dossier.
//
// # Commands
//
//   - render: resolve templates against a case and write the document
//     (the default command when arguments are given)
//   - check: render each template and report unresolved placeholders and
//     malformed markup, with the closest known names
//   - preview: an interactive prompt that renders snippets against a case
//   - init: write a configuration file, and optionally example inputs
//
// A case is read from a YAML file (--case) or from PostgreSQL (--case-id
// with --dsn or $DOSSIER_DSN). Clauses come from the database or a YAML
// library (--clauses); those whose condition holds are spliced into the
// template's CLAUSE markers.
//
// Template names are resolved against --template-dir, then each directory
// in $DOSSIER_PATH, then the templates directory of the user configuration
// directory. A name that is an existing path is used as is.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory. Keys name flags with hyphens or underscores; a mapping named
// after a command holds values for that command only. The init command
// writes the current flag values in this format.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o dossier .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: the pprof
//     directory in the user cache directory)
//
// # Examples
//
//	# Render to a file, failing on anything unresolved
//	dossier render -c case.yaml --clauses clauses.yaml -o out.txt --strict convenant.txt
//
//	# Render a stored case as JSON with diagnostics
//	dossier render --case-id 42 --dsn postgres://localhost/dossier -f json convenant.txt
//
//	# Check every template of a directory
//	dossier check -c case.yaml templates/*.txt
//
//	# Start from examples
//	dossier init --examples ./example
package cli
