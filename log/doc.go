// Package log provides the structured logger used by dossier, a thin
// concurrency-safe layer over [log/slog].
//
// Every engine diagnostic (unresolved placeholders, malformed markup,
// collection parse failures) is emitted through this package, so the
// attributes attached with [Logger.With] (correlation id, document region)
// travel with each entry.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("render complete", slog.String("case", "2024-117"))
//
// # Configuration
//
// Configuration is applied at creation time with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with some options overridden. The package
// keeps a default logger that the package-level functions ([Info], [Warn],
// ...) write to; [Config] reconfigures it.
//
// # Levels
//
// [LevelTrace], [LevelDebug], [LevelInfo], [LevelWarn] and [LevelError].
// Trace sits below slog's Debug and is used for per-pass engine detail.
//
// # Output Formats
//
// [FormatJSON] (default) and [FormatText]. With [WithPretty] enabled both
// formats are colorized for terminals.
package log
