package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/dossier/lang"
	"github.com/ardnew/dossier/log"
	"github.com/ardnew/dossier/pkg"
)

// maxSuggestions bounds the "did you mean" list of one token.
const maxSuggestions = 3

// Styles.
var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Check renders each template against a case and reports what did not
// resolve, with the closest context names for every unresolved token.
type Check struct {
	Source `embed:""`

	Template []string `arg:"" help:"Template name(s) or path(s) to check, each on its own." name:"template"`

	Stdout io.Writer `kong:"-"`
}

// Run executes the check command. It fails when any template has findings.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := c.Stdout
	if w == nil {
		w = os.Stdout
	}

	logger := log.Default().With(slog.String("command", "check"))

	eng, data, err := c.load(ctx, logger)
	if err != nil {
		return err
	}

	keys := eng.Context(data).Keys()

	var failed pkg.Error

	for _, name := range c.Template {
		text, err := readTemplate([]string{name}, c.TemplateDir)
		if err != nil {
			failed = failed.Wrap(err)

			continue
		}

		res := eng.Render(ctx, lang.Document{Body: text}, data)

		fmt.Fprint(w, formatFindings(name, res.Diagnostics, keys))

		if !res.Diagnostics.Clean() {
			failed = failed.Wrap(pkg.ErrUnresolved.Wrapf("%s", name))
		}
	}

	if len(failed) > 0 {
		return failed
	}

	return nil
}

// formatFindings renders the report of one template.
func formatFindings(name string, diag lang.Diagnostics, keys []string) string {
	var b strings.Builder

	if diag.Clean() {
		b.WriteString(okStyle.Render("✔ "+name) + "\n")

		return b.String()
	}

	b.WriteString(headingStyle.Render(name) + "\n")

	for _, w := range diag.AllWarnings() {
		b.WriteString("  " + warnStyle.Render("warning") + " " + w.String() + "\n")
	}

	u := diag.Unresolved()

	for _, tok := range u.Names() {
		line := "  " + errStyle.Render("unresolved") + " " + tok
		if n := u[tok]; n > 1 {
			line += hintStyle.Render(" ×" + strconv.Itoa(n))
		}

		if s := suggest(tokenName(tok), keys); len(s) > 0 {
			line += hintStyle.Render("  did you mean " + strings.Join(s, ", ") + "?")
		}

		b.WriteString(line + "\n")
	}

	return b.String()
}

// suggest returns the context names closest to name, best first.
func suggest(name string, keys []string) []string {
	if name == "" {
		return nil
	}

	matches := fuzzy.Find(name, keys)

	out := make([]string, 0, maxSuggestions)

	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}

		out = append(out, m.Str)
	}

	return out
}

// tokenName strips the delimiters and case modifier from a verbatim
// placeholder token.
func tokenName(tok string) string {
	name := strings.Trim(tok, "[]{}<> \t")

	if i := strings.IndexByte(name, ':'); i >= 0 {
		switch strings.ToLower(strings.TrimSpace(name[:i])) {
		case "caps", "upper", "lower":
			name = name[i+1:]
		}
	}

	return strings.TrimSpace(name)
}
