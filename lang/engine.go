package lang

import (
	"context"
	"log/slog"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/dossier/log"
)

// Engine renders documents. It holds configuration only; every call to
// [Engine.Render] builds its own context map, collections and counters, so
// one Engine may serve concurrent requests.
type Engine struct {
	logger        log.Logger
	registry      *Registry
	translator    *Translator
	articlePrefix string
	maturity      int
	maxDepth      int
	concurrency   int
	now           func() time.Time
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the logger diagnostics are written to. The default is
// the package default logger of [log].
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry sets the collection registry. The default is
// [DefaultRegistry].
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithTranslator sets the item value translator. The default is
// [DefaultTranslator]; nil disables translation.
func WithTranslator(t *Translator) Option {
	return func(e *Engine) {
		e.translator = t
	}
}

// WithArticlePrefix sets the label of top-level article numbers.
func WithArticlePrefix(prefix string) Option {
	return func(e *Engine) {
		e.articlePrefix = prefix
	}
}

// WithMaturityAge sets the age at which a child stops counting as a minor.
func WithMaturityAge(age int) Option {
	return func(e *Engine) {
		if age > 0 {
			e.maturity = age
		}
	}
}

// WithMaxDepth bounds block nesting in the conditional and loop passes.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithConcurrency bounds how many regions render in parallel.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithClock sets the function supplying the reference date when the case
// data carries none.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an Engine configured by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:        log.Default(),
		registry:      DefaultRegistry(),
		translator:    DefaultTranslator(),
		articlePrefix: DefaultArticlePrefix,
		maturity:      DefaultMaturity,
		maxDepth:      DefaultMaxDepth,
		concurrency:   runtime.GOMAXPROCS(0),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// region is one independently rendered piece of the document.
type region struct {
	name string
	text string
}

// Render resolves doc against data. It never fails: problems are reported
// in [Result.Diagnostics] and logged under the correlation id from ctx (a
// random one when absent), and the affected markup stays visible in the
// output.
func (e *Engine) Render(ctx context.Context, doc Document, data *Data) Result {
	ctx, id := ensureCorrelationID(ctx)
	logger := e.logger.With(correlationAttr(id))

	vars, cols, warns := e.context(data)

	for _, w := range warns {
		logger.WarnContext(ctx, "collection unavailable", slog.Any("warning", w))
	}

	regions := make([]region, 0, 1+len(doc.Headers)+len(doc.Footers))
	regions = append(regions, region{name: "body", text: doc.Body})

	for i, h := range doc.Headers {
		regions = append(regions, region{name: "header/" + strconv.Itoa(i), text: h})
	}

	for i, f := range doc.Footers {
		regions = append(regions, region{name: "footer/" + strconv.Itoa(i), text: f})
	}

	var clauses []Clause
	if data != nil {
		clauses = data.Clauses
	}

	out := make([]string, len(regions))
	diags := make([]RegionDiagnostics, len(regions))

	// vars and cols are read-only from here on.
	var g errgroup.Group

	g.SetLimit(e.concurrency)

	for i, r := range regions {
		g.Go(func() error {
			out[i], diags[i] = e.renderRegion(ctx, logger, r, vars, cols, clauses)

			return nil
		})
	}

	_ = g.Wait()

	res := Result{
		Body: out[0],
		Diagnostics: Diagnostics{
			CorrelationID: id,
			Warnings:      warns,
			Regions:       diags,
		},
	}

	if n := len(doc.Headers); n > 0 {
		res.Headers = out[1 : 1+n]
	}

	if n := len(doc.Footers); n > 0 {
		res.Footers = out[1+len(doc.Headers):]
	}

	logger.DebugContext(ctx, "render complete",
		slog.Int("regions", len(regions)),
		slog.Int("unresolved", res.Diagnostics.Unresolved().Total()),
		slog.Int("warnings", len(res.Diagnostics.AllWarnings())),
	)

	return res
}

// Context builds the context map of data the way [Engine.Render] does:
// case fields, then collection and child grammar, then aliases.
func (e *Engine) Context(data *Data) *Vars {
	vars, _, _ := e.context(data)

	return vars
}

func (e *Engine) context(data *Data) (*Vars, *Collections, []Warning) {
	if data == nil {
		data = &Data{}
	}

	ref := data.ReferenceDate
	if ref.IsZero() {
		ref = e.now()
	}

	scoped := *data
	scoped.ReferenceDate = ref

	vars := NewVars(data.Vars)

	cols, warns := e.registry.Resolve(Input{
		Data:     &scoped,
		Vars:     vars,
		Maturity: e.maturity,
	}, e.translator)

	rules := BuildChildRules(data.Children, ref, e.maturity)
	AddCollectionRules(rules, cols)

	vars.Merge(rules)
	vars.Canonicalize()

	return vars, cols, warns
}

func (e *Engine) renderRegion(
	ctx context.Context,
	logger log.Logger,
	r region,
	vars *Vars,
	cols *Collections,
	clauses []Clause,
) (string, RegionDiagnostics) {
	logger = logger.With(slog.String("region", r.name))
	diag := RegionDiagnostics{Region: r.name}

	text := SpliceClauses(r.text, clauses)

	text, warns := expand(text, cols, e.maxDepth)
	diag.Warnings = append(diag.Warnings, warns...)

	text, warns = strip(text, vars, e.maxDepth)
	diag.Warnings = append(diag.Warnings, warns...)

	text, diag.Unresolved = Resolve(text, vars)
	text = Number(text, e.articlePrefix)

	for _, w := range diag.Warnings {
		logger.WarnContext(ctx, "malformed markup", slog.Any("warning", w))
	}

	if n := diag.Unresolved.Total(); n > 0 {
		logger.InfoContext(ctx, "unresolved placeholders",
			slog.Int("count", n),
			slog.String("tokens", strings.Join(diag.Unresolved.Names(), " ")),
		)
	}

	return text, diag
}

var clausePattern = regexp.MustCompile(`\[\[\s*CLAUSE(?:S|\s*:\s*([^\]]*?))\s*\]\]`)

// SpliceClauses replaces [[CLAUSES]] with the bodies of every clause and
// [[CLAUSE:Group]] with the bodies of the clauses in that group, joined by
// blank lines in the given order. Spliced bodies may carry any markup; they
// are not spliced again.
func SpliceClauses(text string, clauses []Clause) string {
	if !strings.Contains(text, "[[") {
		return text
	}

	return clausePattern.ReplaceAllStringFunc(text, func(m string) string {
		group := strings.TrimSpace(clausePattern.FindStringSubmatch(m)[1])

		var bodies []string

		for _, c := range clauses {
			if group == "" || strings.EqualFold(c.Group, group) {
				bodies = append(bodies, strings.TrimSpace(c.Body))
			}
		}

		return strings.Join(bodies, "\n\n")
	})
}
