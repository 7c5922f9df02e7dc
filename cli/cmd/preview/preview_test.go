package preview

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/dossier/lang"
	"github.com/ardnew/dossier/log"
)

func testModel(t *testing.T) model {
	t.Helper()

	eng := lang.New(lang.WithLogger(log.Discard()))
	data := &lang.Data{
		Vars: map[string]string{"Name": "Jan", "Custody": "joint"},
		Clauses: []lang.Clause{
			{ID: "custody-joint", Group: "custody", Title: "Gezag"},
		},
	}

	return newModel(context.Background(), eng, data, "", NewHistory(""), log.Discard())
}

func typeRunes(m model, s string) model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})

	return next.(model)
}

func press(m model, k tea.KeyType) model {
	next, _ := m.Update(tea.KeyMsg{Type: k})

	return next.(model)
}

func hasMatch(m model, s string) bool {
	return slices.ContainsFunc(m.matches, func(match fuzzy.Match) bool {
		return match.Str == s
	})
}

func TestModel_Render(t *testing.T) {
	m := testModel(t)

	out := m.render("Hallo [[Name]], [[Missing]]")

	if !strings.Contains(out, "Hallo Jan, [[Missing]]") {
		t.Errorf("render() = %q, want resolved body", out)
	}

	if !strings.Contains(out, "unresolved: [[Missing]]") {
		t.Errorf("render() = %q, want unresolved report", out)
	}
}

func TestModel_RenderMultiline(t *testing.T) {
	m := testModel(t)

	out := m.render(unescape(`[[IF:Name]]a\nb[[ENDIF:Name]]`))

	if !strings.Contains(out, "a\nb") {
		t.Errorf("render() = %q, want line break", out)
	}
}

func TestModel_CompletionInsidePlaceholder(t *testing.T) {
	m := testModel(t)

	m = typeRunes(m, "Cust")
	if len(m.matches) != 0 {
		t.Errorf("matches outside placeholder = %v, want none", m.matches)
	}

	m = press(m, tea.KeyCtrlC)
	m = typeRunes(m, "[[Cust")

	if !hasMatch(m, "Custody") {
		t.Fatalf("matches = %v, want Custody", m.matches)
	}

	m = press(m, tea.KeyTab)

	if got := m.input.Value(); !strings.HasPrefix(got, "[[Cust") {
		t.Errorf("after Tab input = %q", got)
	}
}

func TestModel_CtrlMode(t *testing.T) {
	m := testModel(t)

	m = typeRunes(m, "draft")
	m = press(m, tea.KeyEsc)

	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("mode = %v value = %q, want empty ctrl", m.mode, m.input.Value())
	}

	m = typeRunes(m, "cla")
	if !hasMatch(m, "clauses") {
		t.Errorf("matches = %v, want clauses", m.matches)
	}

	m = press(m, tea.KeyEsc)

	if m.mode != modeRender || m.input.Value() != "draft" {
		t.Errorf("mode = %v value = %q, want restored render input", m.mode, m.input.Value())
	}
}

func TestModel_ExecuteAddsHistory(t *testing.T) {
	m := testModel(t)

	m = typeRunes(m, "[[Name]]")
	m = press(m, tea.KeyEnter)

	if m.history.Len() != 1 {
		t.Fatalf("history Len() = %d, want 1", m.history.Len())
	}

	if m.input.Value() != "" {
		t.Errorf("input = %q, want cleared", m.input.Value())
	}

	m = press(m, tea.KeyUp)
	if m.input.Value() != "[[Name]]" {
		t.Errorf("after Up input = %q, want history entry", m.input.Value())
	}

	m = press(m, tea.KeyDown)
	if m.input.Value() != "" {
		t.Errorf("after Down input = %q, want empty", m.input.Value())
	}
}

func TestModel_Listings(t *testing.T) {
	m := testModel(t)

	if vars := m.listVars("cust"); !strings.Contains(vars, "Custody") || strings.Contains(vars, "Name ") {
		t.Errorf("listVars(cust) = %q", vars)
	}

	if cl := m.listClauses(); !strings.Contains(cl, "custody-joint") {
		t.Errorf("listClauses() = %q", cl)
	}
}
