package lang

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
)

// ParseCondition decodes a YAML (or JSON) condition document into a [Node].
//
// A document is one of
//
//	all: [<doc>, ...]         # AND group
//	any: [<doc>, ...]         # OR group
//	expr: <expr-lang source>
//	field: <name>
//	op: <operator>            # default "=" with a value, "not-empty" without
//	value: <literal>
//	values: [<literal>, ...]  # for "in"
//	compare_field: <name>     # compare against another field
//
// Structural problems are reported as [ErrConditionDocument]; unknown
// operators as [ErrUnknownOperator].
func ParseCondition(data []byte) (Node, error) {
	var doc any

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ErrConditionDocument.Wrap(err)
	}

	if doc == nil {
		return nil, ErrConditionDocument.With(slog.String("issue", "empty document"))
	}

	return BuildCondition(doc)
}

// BuildCondition converts an already-decoded condition document (maps,
// slices and scalars as produced by a YAML or JSON decoder) into a [Node].
func BuildCondition(doc any) (Node, error) {
	return buildNode(doc, "$")
}

func buildNode(doc any, path string) (Node, error) {
	m, ok := asMap(doc)
	if !ok {
		return nil, ErrConditionDocument.With(
			slog.String("path", path),
			slog.String("issue", "expected a mapping"),
		)
	}

	var kinds []string

	for _, k := range []string{"all", "any", "expr", "field"} {
		if _, ok := m[k]; ok {
			kinds = append(kinds, k)
		}
	}

	if len(kinds) != 1 {
		return nil, ErrConditionDocument.With(
			slog.String("path", path),
			slog.String("issue",
				"expected exactly one of all, any, expr, field"),
		)
	}

	switch kinds[0] {
	case "all":
		return buildGroup(And, m["all"], path+".all")

	case "any":
		return buildGroup(Or, m["any"], path+".any")

	case "expr":
		src := strings.TrimSpace(scalar(m["expr"]))
		if src == "" {
			return nil, ErrConditionDocument.With(
				slog.String("path", path+".expr"),
				slog.String("issue", "empty expression"),
			)
		}

		if _, err := compileExpr(src); err != nil {
			return nil, err
		}

		return &Expr{Source: src}, nil
	}

	return buildLeaf(m, path)
}

func buildGroup(op GroupOp, doc any, path string) (Node, error) {
	g := &Group{Op: op}

	if doc == nil {
		return g, nil
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, ErrConditionDocument.With(
			slog.String("path", path),
			slog.String("issue", "expected a sequence"),
		)
	}

	for i, item := range items {
		child, err := buildNode(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}

		g.Children = append(g.Children, child)
	}

	return g, nil
}

func buildLeaf(m map[string]any, path string) (Node, error) {
	leaf := &Leaf{
		Field:        strings.TrimSpace(scalar(m["field"])),
		Value:        scalar(m["value"]),
		CompareField: strings.TrimSpace(scalar(m["compare_field"])),
	}

	if leaf.Field == "" {
		return nil, ErrConditionDocument.With(
			slog.String("path", path+".field"),
			slog.String("issue", "empty field name"),
		)
	}

	if vs, ok := m["values"]; ok {
		items, ok := vs.([]any)
		if !ok {
			return nil, ErrConditionDocument.With(
				slog.String("path", path+".values"),
				slog.String("issue", "expected a sequence"),
			)
		}

		for _, v := range items {
			leaf.Values = append(leaf.Values, scalar(v))
		}
	}

	rawOp, hasOp := m["op"]

	switch {
	case hasOp:
		op, ok := ParseOperator(scalar(rawOp))
		if !ok {
			return nil, ErrUnknownOperator.With(
				slog.String("path", path+".op"),
				slog.String("op", scalar(rawOp)),
			)
		}

		leaf.Op = op

	case len(leaf.Values) > 0:
		leaf.Op = OpIn

	case m["value"] != nil || leaf.CompareField != "":
		leaf.Op = OpEqual

	default:
		leaf.Op = OpNotEmpty
	}

	return leaf, nil
}

func asMap(doc any) (map[string]any, bool) {
	switch m := doc.(type) {
	case map[string]any:
		return m, true

	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[scalar(k)] = v
		}

		return out, true
	}

	return nil, false
}

// scalar renders a decoded YAML scalar as the string form the context map
// would hold.
func scalar(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "true"
		}

		return "false"
	default:
		return fmt.Sprint(s)
	}
}
