package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/dossier/casefile"
	"github.com/ardnew/dossier/clause"
	"github.com/ardnew/dossier/lang"
	"github.com/ardnew/dossier/log"
	"github.com/ardnew/dossier/pkg"
	"github.com/ardnew/dossier/store"
)

// Source selects the case data, clause library and engine settings shared by
// the rendering commands.
type Source struct {
	Case         string   `group:"case" help:"Case file (YAML)."                               short:"c"       type:"existingfile" xor:"case"`
	CaseID       string   `group:"case" help:"Case identifier to load from the database."                                      xor:"case"`
	DSN          string   `group:"case" help:"PostgreSQL connection string."                   env:"DOSSIER_DSN" name:"dsn"`
	Clauses      string   `group:"case" help:"Clause library file (YAML)."                                     type:"existingfile"`
	ClauseGroup  []string `group:"case" help:"Clause groups to read from the database."                                        sep:","`
	TemplateDir  []string `help:"Template search directory (searched before $DOSSIER_PATH)."   short:"T"       type:"path"`
	ArticleLabel string   `default:"Artikel" help:"Label written before top-level article numbers."`
	MaturityAge  int      `default:"18"      help:"Age at which a child stops counting as a minor."`
	MaxDepth     int      `default:"64"      help:"Maximum block nesting depth."`
	Concurrency  int      `default:"0"       help:"Regions rendered in parallel (0 for one per CPU)."`
}

// engine returns the engine configured by the flags.
func (s *Source) engine(logger log.Logger) *lang.Engine {
	return lang.New(
		lang.WithLogger(logger),
		lang.WithArticlePrefix(s.ArticleLabel),
		lang.WithMaturityAge(s.MaturityAge),
		lang.WithMaxDepth(s.MaxDepth),
		lang.WithConcurrency(s.Concurrency),
	)
}

// load reads the case data and clause library and selects the clauses that
// apply to the case. The selected clauses are stored in the returned data.
func (s *Source) load(
	ctx context.Context,
	logger log.Logger,
) (*lang.Engine, *lang.Data, error) {
	var (
		data *lang.Data
		lib  *clause.Library
		err  error
	)

	switch {
	case s.CaseID != "":
		data, lib, err = s.loadDatabase(ctx)

	case s.Case != "":
		data, err = casefile.Read(s.Case)
		if err != nil {
			err = ErrOpenCase.Wrap(err)
		}

	default:
		err = pkg.ErrNoCase
	}

	if err != nil {
		return nil, nil, err
	}

	if s.Clauses != "" {
		lib, err = readClauses(s.Clauses)
		if err != nil {
			return nil, nil, err
		}
	}

	eng := s.engine(logger)

	if lib != nil {
		data.Clauses = lib.SelectContext(ctx, logger, eng.Context(data))

		logger.DebugContext(ctx, "clauses selected",
			slog.Int("library", lib.Len()),
			slog.Int("selected", len(data.Clauses)),
		)
	}

	return eng, data, nil
}

func (s *Source) loadDatabase(
	ctx context.Context,
) (*lang.Data, *clause.Library, error) {
	if s.DSN == "" {
		return nil, nil, ErrOpenCase.Wrap(ErrNoDSN)
	}

	src, err := store.Open(ctx, s.DSN)
	if err != nil {
		return nil, nil, ErrOpenCase.Wrap(err)
	}
	defer src.Close()

	data, err := src.Load(ctx, s.CaseID)
	if err != nil {
		return nil, nil, ErrOpenCase.Wrap(err).With(slog.String("case", s.CaseID))
	}

	// A library file replaces the stored clauses.
	if s.Clauses != "" {
		return data, nil, nil
	}

	lib, err := src.Clauses(ctx, s.ClauseGroup...)
	if err != nil {
		return nil, nil, ErrOpenClauses.Wrap(err)
	}

	return data, lib, nil
}

func readClauses(path string) (*clause.Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrOpenClauses.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	lib, err := clause.Load(f)
	if err != nil {
		return nil, ErrOpenClauses.Wrap(err).With(slog.String("path", path))
	}

	return lib, nil
}
