package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/dossier/lang"
	"github.com/ardnew/dossier/pkg"
)

func TestTokenName(t *testing.T) {
	tests := []struct {
		tok  string
		want string
	}{
		{"[[Name]]", "Name"},
		{"{{ Name }}", "Name"},
		{"[[caps:Name]]", "Name"},
		{"<<UPPER: kind/kinderen>>", "kind/kinderen"},
		{"[[IF:HasKids]]", "IF:HasKids"},
	}

	for _, tt := range tests {
		if got := tokenName(tt.tok); got != tt.want {
			t.Errorf("tokenName(%q) = %q, want %q", tt.tok, got, tt.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	keys := []string{"ChildCount", "Custody", "CustodyParent", "Name"}

	got := suggest("Custdy", keys)
	if len(got) == 0 || got[0] != "Custody" {
		t.Errorf("suggest(Custdy) = %v, want Custody first", got)
	}

	if got := suggest("", keys); got != nil {
		t.Errorf("suggest(\"\") = %v, want nil", got)
	}

	if got := suggest("C", keys); len(got) > maxSuggestions {
		t.Errorf("suggest(C) returned %d names", len(got))
	}
}

func TestFormatFindings(t *testing.T) {
	clean := formatFindings("a.txt", lang.Diagnostics{}, nil)
	if !strings.Contains(clean, "a.txt") || strings.Contains(clean, "unresolved") {
		t.Errorf("clean findings = %q", clean)
	}

	diag := lang.Diagnostics{
		Regions: []lang.RegionDiagnostics{{
			Region:     "body",
			Unresolved: lang.Unresolved{"[[Nmae]]": 2},
			Warnings: []lang.Warning{{
				Pass:    lang.PassConditional,
				Message: "unmatched close tag",
				Tag:     "[[ENDIF:X]]",
			}},
		}},
	}

	out := formatFindings("b.txt", diag, []string{"Name", "Custody"})

	for _, want := range []string{"b.txt", "unresolved", "[[Nmae]]", "×2", "did you mean Name", "unmatched close tag"} {
		if !strings.Contains(out, want) {
			t.Errorf("findings missing %q:\n%s", want, out)
		}
	}
}

func TestCheck_Run(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"case.yaml": testCase,
		"good.txt":  "Hallo [[Name]]",
		"bad.txt":   "Hallo [[Nme]]",
	})

	var buf bytes.Buffer

	c := &Check{
		Source:   testSource(dir),
		Template: []string{filepath.Join(dir, "good.txt"), filepath.Join(dir, "bad.txt")},
		Stdout:   &buf,
	}

	err := c.Run(context.Background())
	if !errors.Is(err, pkg.ErrUnresolved) {
		t.Errorf("Run() error = %v, want ErrUnresolved", err)
	}

	out := buf.String()
	if !strings.Contains(out, "good.txt") || !strings.Contains(out, "[[Nme]]") {
		t.Errorf("output = %q", out)
	}

	if strings.Contains(out, "[[Name]]") {
		t.Errorf("output reports a resolved token: %q", out)
	}
}

func TestCheck_RunClean(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"case.yaml": testCase,
		"good.txt":  "Hallo [[Name]]",
	})

	c := &Check{
		Source:   testSource(dir),
		Template: []string{filepath.Join(dir, "good.txt")},
		Stdout:   &bytes.Buffer{},
	}

	if err := c.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}
