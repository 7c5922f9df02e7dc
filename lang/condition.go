package lang

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/dossier/log"
)

// Node is a condition tree: a [*Group], a [*Leaf] or an [*Expr].
type Node interface {
	evaluate(e *evaluation) bool
	describe(b *strings.Builder, path map[*Group]bool)
}

// GroupOp combines the children of a [Group].
type GroupOp string

const (
	And GroupOp = "AND"
	Or  GroupOp = "OR"
)

// Group is an AND/OR combination of ordered child nodes. An empty group is
// true.
type Group struct {
	Op       GroupOp
	Children []Node
}

// Operator is the comparison applied by a [Leaf].
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpContains     Operator = "contains"
	OpIn           Operator = "in"
	OpEmpty        Operator = "empty"
	OpNotEmpty     Operator = "not-empty"
)

var operatorAlias = map[string]Operator{
	"=": OpEqual, "==": OpEqual, "eq": OpEqual,
	"!=": OpNotEqual, "<>": OpNotEqual, "ne": OpNotEqual,
	">": OpGreater, "gt": OpGreater,
	">=": OpGreaterEqual, "ge": OpGreaterEqual, "gte": OpGreaterEqual,
	"<": OpLess, "lt": OpLess,
	"<=": OpLessEqual, "le": OpLessEqual, "lte": OpLessEqual,
	"contains": OpContains,
	"in":       OpIn,
	"empty":    OpEmpty, "is-empty": OpEmpty,
	"not-empty": OpNotEmpty, "notempty": OpNotEmpty, "not_empty": OpNotEmpty,
}

// ParseOperator returns the canonical operator for s, accepting the
// symbolic forms and their word aliases ("eq", "gte", "not_empty", ...).
func ParseOperator(s string) (Operator, bool) {
	op, ok := operatorAlias[strings.ToLower(strings.TrimSpace(s))]

	return op, ok
}

// Leaf compares a field against a literal, a literal list, or a second
// field. When CompareField is set, both operands come from the same
// [Vars] snapshot.
type Leaf struct {
	Field        string
	Op           Operator
	Value        string
	Values       []string
	CompareField string
}

// Evaluate reports whether node holds for vars. Malformed nodes evaluate to
// false and are logged to the default logger.
func Evaluate(node Node, vars *Vars) bool {
	return EvaluateContext(log.DefaultContextProvider(), log.Default(), node, vars)
}

// EvaluateContext is like [Evaluate] but logs through logger with ctx.
func EvaluateContext(
	ctx context.Context,
	logger log.Logger,
	node Node,
	vars *Vars,
) bool {
	e := &evaluation{
		ctx:    ctx,
		logger: logger,
		vars:   vars,
		root:   node,
		path:   make(map[*Group]bool),
	}

	return e.eval(node)
}

// Describe renders node as a human-readable expression for diagnostics.
func Describe(node Node) string {
	var b strings.Builder

	describeNode(&b, node, make(map[*Group]bool))

	return b.String()
}

type evaluation struct {
	ctx    context.Context
	logger log.Logger
	vars   *Vars
	root   Node
	path   map[*Group]bool // groups on the current descent
}

func (e *evaluation) eval(node Node) bool {
	if node == nil {
		e.fail("nil condition node")

		return false
	}

	return node.evaluate(e)
}

func (e *evaluation) fail(msg string, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("condition", Describe(e.root)))
	e.logger.WarnContext(e.ctx, msg, attrs...)
}

func (g *Group) evaluate(e *evaluation) bool {
	if e.path[g] {
		e.fail("condition cycle")

		return false
	}

	e.path[g] = true
	defer delete(e.path, g)

	switch GroupOp(strings.ToUpper(string(g.Op))) {
	case And:
		for _, c := range g.Children {
			if !e.eval(c) {
				return false
			}
		}

		return true

	case Or:
		if len(g.Children) == 0 {
			return true
		}

		for _, c := range g.Children {
			if e.eval(c) {
				return true
			}
		}

		return false

	default:
		e.fail("unknown group operator", slog.String("op", string(g.Op)))

		return false
	}
}

func (l *Leaf) evaluate(e *evaluation) bool {
	op, ok := ParseOperator(string(l.Op))
	if !ok {
		e.fail(ErrUnknownOperator.Error(), slog.String("op", string(l.Op)))

		return false
	}

	lhs := e.vars.Get(l.Field)
	rhs := l.Value

	if l.CompareField != "" {
		rhs = e.vars.Get(l.CompareField)
	}

	switch op {
	case OpEqual:
		return equalValues(lhs, rhs)

	case OpNotEqual:
		return !equalValues(lhs, rhs)

	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		a, aok := parseNumber(lhs)
		b, bok := parseNumber(rhs)

		if !aok || !bok {
			e.fail("non-numeric operand",
				slog.String("field", l.Field),
				slog.String("lhs", lhs),
				slog.String("rhs", rhs))

			return false
		}

		return compareNumbers(op, a, b)

	case OpContains:
		return strings.Contains(strings.ToLower(lhs), strings.ToLower(rhs))

	case OpIn:
		set := l.Values
		if len(set) == 0 || l.CompareField != "" {
			set = strings.Split(rhs, ",")
		}

		for _, s := range set {
			if equalFoldTrim(lhs, s) {
				return true
			}
		}

		return false

	case OpEmpty:
		return strings.TrimSpace(lhs) == ""

	case OpNotEmpty:
		return strings.TrimSpace(lhs) != ""
	}

	return false
}

func (g *Group) describe(b *strings.Builder, path map[*Group]bool) {
	if path[g] {
		b.WriteString("<cycle>")

		return
	}

	path[g] = true
	defer delete(path, g)

	if len(g.Children) == 0 {
		b.WriteString("true")

		return
	}

	b.WriteByte('(')

	for i, c := range g.Children {
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(strings.ToUpper(string(g.Op)))
			b.WriteByte(' ')
		}

		describeNode(b, c, path)
	}

	b.WriteByte(')')
}

func (l *Leaf) describe(b *strings.Builder, _ map[*Group]bool) {
	b.WriteString(l.Field)
	b.WriteByte(' ')
	b.WriteString(string(l.Op))

	switch {
	case l.Op == OpEmpty || l.Op == OpNotEmpty:
		return

	case l.CompareField != "":
		b.WriteString(" @")
		b.WriteString(l.CompareField)

	case len(l.Values) > 0:
		b.WriteString(" [")

		for i, v := range l.Values {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(strconv.Quote(v))
		}

		b.WriteByte(']')

	default:
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(l.Value))
	}
}

func describeNode(b *strings.Builder, node Node, path map[*Group]bool) {
	if node == nil {
		b.WriteString("<nil>")

		return
	}

	node.describe(b, path)
}

// equalValues compares numerically when both sides are numbers, otherwise
// case-insensitively after trimming.
func equalValues(a, b string) bool {
	x, xok := parseNumber(a)
	y, yok := parseNumber(b)

	if xok && yok {
		return x == y
	}

	return equalFoldTrim(a, b)
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// parseNumber accepts plain decimals and the comma-decimal form common in
// Dutch case data ("1250,50").
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return f, true
}

func compareNumbers(op Operator, a, b float64) bool {
	switch op {
	case OpGreater:
		return a > b
	case OpGreaterEqual:
		return a >= b
	case OpLess:
		return a < b
	case OpLessEqual:
		return a <= b
	}

	return false
}
