package lang

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Expr is a condition written as an expr-lang boolean expression, for the
// cases a field/operator tree cannot express compactly:
//
//	num(MinorChildCount) > 1 && Custody in ["joint", "shared"]
//
// Every context name is visible as a string variable. The helpers num(s)
// and blank(s) convert and test values the way [Leaf] operators do.
type Expr struct {
	Source string
}

// programCache stores compiled programs keyed by expression source.
var programCache sync.Map

// compileExpr returns the cached program for source, compiling it on first
// use.
func compileExpr(source string) (*vm.Program, error) {
	if p, ok := programCache.Load(source); ok {
		if program, ok := p.(*vm.Program); ok {
			return program, nil
		}
	}

	program, err := expr.Compile(source, expr.AsBool())
	if err != nil {
		return nil, ErrExprCompile.Wrap(err).
			With(slog.String("source", source))
	}

	actual, _ := programCache.LoadOrStore(source, program)

	if p, ok := actual.(*vm.Program); ok {
		return p, nil
	}

	return program, nil
}

// exprEnv builds the runtime environment for vars.
func exprEnv(vars *Vars) map[string]any {
	env := make(map[string]any, vars.Len()+2)

	for k, v := range vars.Map() {
		env[k] = v
	}

	env["num"] = func(v any) float64 {
		s, _ := v.(string)
		f, _ := parseNumber(s)

		return f
	}

	env["blank"] = func(v any) bool {
		s, _ := v.(string)

		return strings.TrimSpace(s) == ""
	}

	return env
}

func (x *Expr) evaluate(e *evaluation) bool {
	program, err := compileExpr(x.Source)
	if err != nil {
		e.fail("condition expression", slog.Any("error", err))

		return false
	}

	out, err := vm.Run(program, exprEnv(e.vars))
	if err != nil {
		e.fail("condition expression", slog.Any("error",
			ErrExprEvaluate.Wrap(err).With(slog.String("source", x.Source))))

		return false
	}

	b, ok := out.(bool)

	return ok && b
}

func (x *Expr) describe(b *strings.Builder, _ map[*Group]bool) {
	b.WriteString("expr(")
	b.WriteString(x.Source)
	b.WriteByte(')')
}
