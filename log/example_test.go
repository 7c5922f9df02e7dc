package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/dossier/log"
)

func Example_text() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"))

	logger.Info("document rendered", slog.String("template", "convenant"))
	// Output:
	// level=INFO msg="document rendered" template=convenant
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelWarn),
		log.WithTimeLayout("none"))

	logger.Info("hidden")
	logger.Warn("unterminated block", slog.String("tag", "IF:HasPension"))
	// Output:
	// {"level":"WARN","msg":"unterminated block","tag":"IF:HasPension"}
}
