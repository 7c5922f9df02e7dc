package lang

import (
	"errors"
	"testing"

	"github.com/ardnew/dossier/log"
)

func TestParseCondition(t *testing.T) {
	vars := testVars()

	tests := []struct {
		name string
		doc  string
		want bool
	}{
		{"leaf", "field: City\nop: eq\nvalue: Den Haag", true},
		{"default op with value", "field: Age\nvalue: 17", true},
		{"default op without value", "field: City", true},
		{"values imply in", "field: Custody\nvalues: [sole, joint]", true},
		{"numeric yaml value", "field: Age\nop: '<'\nvalue: 18", true},
		{"compare field", "field: Income\nop: gt\ncompare_field: Threshold", true},
		{"all", "all:\n  - field: Flag\n  - field: Age\n    op: '>'\n    value: 20", false},
		{"any", "any:\n  - field: Missing\n  - field: Flag", true},
		{"empty all", "all: []", true},
		{"expr", "expr: num(Age) >= 17", true},
		{"json", `{"any":[{"field":"City","op":"contains","value":"haag"}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := ParseCondition([]byte(tt.doc))
			if err != nil {
				t.Fatalf("ParseCondition: %v", err)
			}

			if got := EvaluateContext(t.Context(), log.Discard(), node, vars); got != tt.want {
				t.Errorf("%s = %v, want %v", Describe(node), got, tt.want)
			}
		})
	}
}

func TestParseCondition_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"empty", "", ErrConditionDocument},
		{"scalar", "just text", ErrConditionDocument},
		{"two kinds", "field: a\nexpr: b", ErrConditionDocument},
		{"none", "op: eq", ErrConditionDocument},
		{"bad group", "all: nope", ErrConditionDocument},
		{"empty field", "field: ''", ErrConditionDocument},
		{"unknown op", "field: a\nop: like", ErrUnknownOperator},
		{"bad expr", "expr: 'a +'", ErrExprCompile},
		{"nested error", "any:\n  - field: a\n    op: nope", ErrUnknownOperator},
		{"invalid yaml", "field: [", ErrConditionDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCondition([]byte(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseOperator(t *testing.T) {
	for in, want := range map[string]Operator{
		"==": OpEqual, "GTE": OpGreaterEqual, " notempty ": OpNotEmpty, "<>": OpNotEqual,
	} {
		if got, ok := ParseOperator(in); !ok || got != want {
			t.Errorf("ParseOperator(%q) = %q, %v", in, got, ok)
		}
	}

	if _, ok := ParseOperator("between"); ok {
		t.Error("accepted unknown operator")
	}
}
