package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/dossier/casefile"
	"github.com/ardnew/dossier/log"
	"github.com/ardnew/dossier/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init writes a configuration file holding the current flag values and,
// optionally, a set of example inputs to start from.
type Init struct {
	Force    bool   `help:"Overwrite existing files"                                         short:"f"`
	Examples string `help:"Also write an example case, clause library and template into DIR" placeholder:"DIR" type:"path"`
}

// Example file names written by [Init].
const (
	ExampleCase     = "case.yaml"
	ExampleClauses  = "clauses.yaml"
	ExampleTemplate = "convenant.txt"
)

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	conf, err := yaml.MarshalWithOptions(i.buildConfig(ctx), yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if err := i.writeFile(confPath, conf); err != nil {
		return err
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	if i.Examples == "" {
		return nil
	}

	return i.writeExamples(ctx)
}

func (i *Init) writeExamples(ctx context.Context) error {
	if err := os.MkdirAll(i.Examples, 0o755); err != nil {
		return ErrWriteConfig.With(slog.String("dir", i.Examples)).Wrap(err)
	}

	caseDoc, err := casefile.Example()
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{ExampleCase, caseDoc},
		{ExampleClauses, []byte(exampleClauses)},
		{ExampleTemplate, []byte(exampleTemplate)},
	}

	for _, f := range files {
		path := filepath.Join(i.Examples, f.name)

		if err := i.writeFile(path, f.data); err != nil {
			return err
		}

		log.DebugContext(ctx, "wrote example", slog.String("path", path))
	}

	return nil
}

func (i *Init) writeFile(path string, data []byte) error {
	// Check if file exists and force not set
	_, err := os.Stat(path)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", path)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", path)).
			Wrap(err)
	}

	return nil
}

// buildConfig collects the current flag values, keyed the way the
// configuration resolver reads them back.
func (i *Init) buildConfig(ctx context.Context) map[string]any {
	ktx := kongContextFrom(ctx)

	conf := make(map[string]any)

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if val := flagValue(ktx, flag); val != nil {
			conf[strings.ReplaceAll(flag.Name, "-", "_")] = val
		}
	}

	return conf
}

// flagValue returns the config value of a flag, or nil if unset.
func flagValue(ktx *kong.Context, flag *kong.Flag) any {
	val := ktx.FlagValue(flag)

	switch v := val.(type) {
	case nil:
		return nil

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case []int:
		if len(v) == 0 {
			return nil
		}

		return v

	default:
		return v
	}
}

const exampleClauses = `clauses:
  - id: custody-joint
    group: custody
    order: 10
    title: Gezamenlijk gezag
    body: |
      [[ARTICLE]] Gezag
      De ouders blijven samen het gezag uitoefenen over [[zijn/haar]] [[kind/kinderen]].
    when:
      field: Custody
      value: joint
  - id: custody-sole
    group: custody
    order: 10
    title: Eenhoofdig gezag
    body: |
      [[ARTICLE]] Gezag
      Het gezag over [[zijn/haar]] [[kind/kinderen]] berust bij [[CustodyParent]].
    when:
      field: Custody
      value: sole
  - id: pension
    group: finance
    order: 20
    title: Pensioen
    body: |
      [[ARTICLE]] Pensioen
      [[IF:HasPension]]Het ouderdomspensioen wordt verevend.[[ENDIF:HasPension]]
    when:
      field: HasPension
`

const exampleTemplate = `ECHTSCHEIDINGSCONVENANT

[[#Parties]]
[[PARTY_INDEX]]. [[PARTY_NAME]], hierna te noemen de [[PARTY_ROLE]];
[[/Parties]]

[[ARTICLE]] Kinderen
Partijen hebben [[ChildCount]] [[kind/kinderen]].
[[#Children]]
[[SUBARTICLE]] [[CHILD_NAME]], geboren op [[CHILD_BIRTH_DATE]].
[[/Children]]

[[CLAUSE:custody]]

[[#Accounts]]
[[ARTICLE]] Bankrekeningen
[[#Accounts]]
[[SUBARTICLE]] Rekening [[ACCOUNT_NUMBER]] ten name van [[ACCOUNT_HOLDER]].
[[/Accounts]]
[[/Accounts]]

[[CLAUSE:finance]]
`
