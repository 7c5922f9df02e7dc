package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/dossier/cli/cmd/preview"
	"github.com/ardnew/dossier/log"
	"github.com/ardnew/dossier/pkg"
)

// Preview starts an interactive prompt that renders template snippets
// against a case.
type Preview struct {
	Source `embed:""`

	Template []string `arg:"" help:"Template name(s) or path(s) loaded into the edit buffer." name:"template" optional:""`
}

// Run executes the preview command.
func (p *Preview) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().With(slog.String("command", "preview"))

	text, err := readTemplate(p.Template, p.TemplateDir)
	if err != nil {
		return err
	}

	eng, data, err := p.load(ctx, logger)
	if err != nil {
		return err
	}

	return preview.Run(ctx, eng, data, text, kongVar(ctx, CacheIdentifier, pkg.CacheDir()), logger)
}
