// Package clause holds libraries of reusable article bodies and selects the
// ones that apply to a case.
//
// A library file is YAML:
//
//	clauses:
//	  - id: custody-joint
//	    group: custody
//	    order: 10
//	    title: Gezamenlijk gezag
//	    body: |
//	      [[ARTICLE]] De ouders oefenen gezamenlijk het gezag uit over
//	      [[zijn/haar]] [[kind/kinderen]].
//	    when:
//	      field: Custody
//	      op: eq
//	      value: joint
//
// The when key holds a condition document as accepted by
// [lang.ParseCondition]. A clause without one always applies.
package clause

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/dossier/lang"
	"github.com/ardnew/dossier/log"
)

// Predefined errors (sentinel values).
var (
	ErrDecode    = lang.NewError("invalid clause library")
	ErrDuplicate = lang.NewError("duplicate clause id")
	ErrCondition = lang.NewError("invalid clause condition")
)

// Entry is one clause of a library.
type Entry struct {
	ID    string
	Group string
	Order int
	Title string
	Body  string
	When  lang.Node // nil means always
}

// Clause returns the engine view of e.
func (e Entry) Clause() lang.Clause {
	return lang.Clause{
		ID:    e.ID,
		Group: e.Group,
		Order: e.Order,
		Title: e.Title,
		Body:  e.Body,
	}
}

// Library is an ordered set of clauses with unique ids.
type Library struct {
	entries []Entry
}

// New returns a library of entries. Ids must be unique.
func New(entries ...Entry) (*Library, error) {
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		key := strings.ToLower(e.ID)
		if seen[key] {
			return nil, ErrDuplicate.With(slog.String("id", e.ID))
		}

		seen[key] = true
	}

	return &Library{entries: slices.Clone(entries)}, nil
}

type document struct {
	Clauses []entryDoc `yaml:"clauses"`
}

type entryDoc struct {
	ID    string `yaml:"id"`
	Group string `yaml:"group"`
	Order int    `yaml:"order"`
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	When  any    `yaml:"when"`
}

// Load decodes a YAML clause library from r.
func Load(r io.Reader) (*Library, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	var doc document

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	entries := make([]Entry, 0, len(doc.Clauses))

	for i, d := range doc.Clauses {
		if strings.TrimSpace(d.ID) == "" {
			return nil, ErrDecode.With(
				slog.Int("index", i),
				slog.String("issue", "missing id"),
			)
		}

		e := Entry{
			ID:    d.ID,
			Group: d.Group,
			Order: d.Order,
			Title: d.Title,
			Body:  d.Body,
		}

		if d.When != nil {
			e.When, err = lang.BuildCondition(d.When)
			if err != nil {
				return nil, ErrCondition.Wrap(err).With(slog.String("id", d.ID))
			}
		}

		entries = append(entries, e)
	}

	return New(entries...)
}

// Len returns the number of clauses in the library.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}

	return len(l.entries)
}

// Entries returns the clauses in library order.
func (l *Library) Entries() []Entry {
	if l == nil {
		return nil
	}

	return slices.Clone(l.entries)
}

// Groups returns the distinct group names in sorted order.
func (l *Library) Groups() []string {
	var groups []string

	for _, e := range l.Entries() {
		if !slices.Contains(groups, e.Group) {
			groups = append(groups, e.Group)
		}
	}

	slices.Sort(groups)

	return groups
}

// Select returns the clauses whose condition holds for vars, sorted by
// group and then order. Library order breaks ties.
func (l *Library) Select(vars *lang.Vars) []lang.Clause {
	return l.SelectContext(log.DefaultContextProvider(), log.Default(), vars)
}

// SelectContext is like [Library.Select] but logs condition failures
// through logger with ctx.
func (l *Library) SelectContext(
	ctx context.Context,
	logger log.Logger,
	vars *lang.Vars,
) []lang.Clause {
	var out []lang.Clause

	for _, e := range l.Entries() {
		if e.When != nil && !lang.EvaluateContext(ctx, logger, e.When, vars) {
			logger.TraceContext(ctx, "clause skipped",
				slog.String("id", e.ID),
				slog.String("when", lang.Describe(e.When)),
			)

			continue
		}

		out = append(out, e.Clause())
	}

	slices.SortStableFunc(out, func(a, b lang.Clause) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Group), strings.ToLower(b.Group)),
			cmp.Compare(a.Order, b.Order),
		)
	})

	return out
}
