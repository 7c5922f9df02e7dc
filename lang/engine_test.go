package lang

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/ardnew/dossier/log"
)

func quietEngine(opts ...Option) *Engine {
	return New(append([]Option{WithLogger(log.Discard())}, opts...)...)
}

func TestRender_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		body string
		vars map[string]string
		want string
	}{
		{
			"conditional truthy",
			"[[IF:HasKids]]We have [[KidCount]] kids.[[ENDIF:HasKids]]",
			map[string]string{"HasKids": "true", "KidCount": "2"},
			"We have 2 kids.",
		},
		{
			"conditional absent",
			"[[IF:HasKids]]We have [[KidCount]] kids.[[ENDIF:HasKids]]",
			map[string]string{"KidCount": "2"},
			"",
		},
		{
			"accounts loop",
			"[[#Accounts]][[ACCOUNT_NAME]]; [[/Accounts]]",
			map[string]string{"Accounts": `[{"name":"A"},{"name":"B"}]`},
			"A; B; ",
		},
		{
			"numbering with reset",
			"[[ARTICLE]] Title\n[[SUBARTICLE]] Sub\n[[ARTICLE_RESET]][[ARTICLE]] Title\n[[SUBARTICLE]] Sub",
			nil,
			"Article 1 Title\n1.1 Sub\nArticle 1 Title\n1.1 Sub",
		},
		{
			"caps modifier",
			"[[caps:greeting]]",
			map[string]string{"greeting": "hello"},
			"Hello",
		},
		{
			"alias bridging",
			"[[IF:has_pension]]{PensionFund}[[ENDIF:has_pension]]",
			map[string]string{"HasPension": "1", "pension_fund": "ABP"},
			"ABP",
		},
		{
			"loop inside conditional",
			"[[IF:Show]]Accounts:[[#Accounts]] [[ACCOUNT_NAME]][[/Accounts]][[ENDIF:Show]]",
			map[string]string{"Show": "yes", "Accounts": `[{"name":"A"},{"name":"B"}]`},
			"Accounts: A B",
		},
		{
			"collection grammar",
			"De [[rekening/rekeningen]] [[#Accounts]]([[ACCOUNT_NAME]])[[/Accounts]]",
			map[string]string{"Accounts": `[{"name":"A"}]`},
			"De rekening (A)",
		},
	}

	e := quietEngine()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Render(t.Context(), Document{Body: tt.body}, &Data{Vars: tt.vars, ReferenceDate: refDate})
			if res.Body != tt.want {
				t.Errorf("Body = %q, want %q", res.Body, tt.want)
			}

			if !res.Diagnostics.Clean() {
				t.Errorf("diagnostics not clean: %+v", res.Diagnostics)
			}
		})
	}
}

func TestRender_NumberingContiguity(t *testing.T) {
	var b strings.Builder

	vars := map[string]string{}

	// Interleave kept and removed articles.
	for i := range 12 {
		flag := fmt.Sprintf("F%d", i)
		if i%3 != 1 {
			vars[flag] = "yes"
		}

		fmt.Fprintf(&b, "[[IF:%s]][[ARTICLE]] text\n[[SUBARTICLE]] sub\n[[ENDIF:%s]]", flag, flag)
	}

	res := quietEngine(WithArticlePrefix("Art.")).Render(t.Context(), Document{Body: b.String()}, &Data{Vars: vars})

	labels := regexp.MustCompile(`Art\. (\d+)`).FindAllStringSubmatch(res.Body, -1)
	if len(labels) != 8 {
		t.Fatalf("got %d articles, want 8:\n%s", len(labels), res.Body)
	}

	for i, m := range labels {
		if m[1] != fmt.Sprint(i+1) {
			t.Errorf("article %d labelled %s", i+1, m[1])
		}
	}

	for i := range 8 {
		if !strings.Contains(res.Body, fmt.Sprintf("%d.1 sub", i+1)) {
			t.Errorf("missing subarticle %d.1", i+1)
		}
	}
}

func TestRender_LoopBeforeNumbering(t *testing.T) {
	body := "[[#Accounts]][[ARTICLE]] [[ACCOUNT_NAME]]\n[[/Accounts]]"
	data := &Data{Vars: map[string]string{"Accounts": `[{"name":"A"},{"name":"B"},{"name":"C"}]`}}

	res := quietEngine().Render(t.Context(), Document{Body: body}, data)

	want := "Article 1 A\nArticle 2 B\nArticle 3 C\n"
	if res.Body != want {
		t.Errorf("Body = %q, want %q", res.Body, want)
	}
}

func TestRender_Regions(t *testing.T) {
	doc := Document{
		Body:    "[[ARTICLE]] [[Name]]\n[[ARTICLE]] [[Name]]",
		Headers: []string{"Case {CaseNo}", "[[ARTICLE]] header"},
		Footers: []string{"[[Missing]]"},
	}

	data := &Data{Vars: map[string]string{"Name": "Jansen", "CaseNo": "2024-117"}}

	res := quietEngine(WithConcurrency(2)).Render(t.Context(), doc, data)

	if res.Body != "Article 1 Jansen\nArticle 2 Jansen" {
		t.Errorf("Body = %q", res.Body)
	}

	if len(res.Headers) != 2 || res.Headers[0] != "Case 2024-117" || res.Headers[1] != "Article 1 header" {
		t.Errorf("Headers = %q", res.Headers)
	}

	if len(res.Footers) != 1 || res.Footers[0] != "[[Missing]]" {
		t.Errorf("Footers = %q", res.Footers)
	}

	u := res.Diagnostics.Unresolved()
	if u.Total() != 1 || u["[[Missing]]"] != 1 {
		t.Errorf("Unresolved = %v", u)
	}

	regions := res.Diagnostics.Regions
	if len(regions) != 4 || regions[3].Region != "footer/0" || regions[3].Unresolved.Total() != 1 {
		t.Errorf("Regions = %+v", regions)
	}
}

func TestRender_Deterministic(t *testing.T) {
	doc := Document{
		Body:    "[[#Children]][[CHILD_NAME]] [[/Children]][[hij/zij]] [[alle_kind/kinderen]]",
		Headers: []string{"[[ARTICLE]]", "[[MinorChildCount]]"},
	}
	data := testData()
	e := quietEngine()

	first := e.Render(t.Context(), doc, data)

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			got := e.Render(t.Context(), doc, data)
			if got.Body != first.Body || strings.Join(got.Headers, "|") != strings.Join(first.Headers, "|") {
				t.Errorf("render differs: %q vs %q", got.Body, first.Body)
			}
		}()
	}

	wg.Wait()

	if first.Body != "Sanne Jansen Tom Jansen zij kinderen" {
		t.Errorf("Body = %q", first.Body)
	}
}

func TestRender_CorrelationID(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelDebug))
	ctx := WithCorrelationID(t.Context(), "req-42")

	res := New(WithLogger(logger)).Render(ctx, Document{Body: "[[IF:A]] [[Nobody]]"}, nil)

	if res.Diagnostics.CorrelationID != "req-42" {
		t.Errorf("CorrelationID = %q", res.Diagnostics.CorrelationID)
	}

	out := buf.String()
	for _, want := range []string{`"correlation_id":"req-42"`, `"region":"body"`, "malformed markup", "unresolved placeholders"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s:\n%s", want, out)
		}
	}
}

func TestRender_GeneratesCorrelationID(t *testing.T) {
	res := quietEngine().Render(t.Context(), Document{Body: "x"}, nil)

	if len(res.Diagnostics.CorrelationID) != 36 {
		t.Errorf("CorrelationID = %q", res.Diagnostics.CorrelationID)
	}

	if res.Body != "x" {
		t.Errorf("Body = %q", res.Body)
	}
}

func TestRender_CollectionWarning(t *testing.T) {
	data := &Data{Vars: map[string]string{"Debts": "not json"}}

	res := quietEngine().Render(t.Context(), Document{Body: "[[#Debts]]x[[/Debts]]ok"}, data)

	if res.Body != "ok" {
		t.Errorf("Body = %q", res.Body)
	}

	if len(res.Diagnostics.Warnings) != 1 {
		t.Errorf("Warnings = %v", res.Diagnostics.Warnings)
	}
}

func TestRender_Clauses(t *testing.T) {
	data := &Data{
		Vars: map[string]string{"Name": "Eva"},
		Clauses: []Clause{
			{ID: "a", Group: "custody", Body: "[[ARTICLE]] Custody for [[Name]]."},
			{ID: "b", Group: "alimony", Body: "[[ARTICLE]] Alimony."},
		},
	}

	res := quietEngine().Render(t.Context(), Document{Body: "[[CLAUSE:alimony]]\n[[CLAUSES]]"}, data)

	want := "Article 1 Alimony.\nArticle 2 Custody for Eva.\n\nArticle 3 Alimony."
	if res.Body != want {
		t.Errorf("Body = %q, want %q", res.Body, want)
	}
}

func TestEngine_Context(t *testing.T) {
	vars := quietEngine().Context(testData())

	for name, want := range map[string]string{
		"ChildCount":          "2",
		"MinorChildCount":     "1",
		"minor_child_count":   "1",
		"rekening/rekeningen": "rekeningen",
		"partij/partijen":     "partij",
	} {
		if got := vars.Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestSpliceClauses(t *testing.T) {
	clauses := []Clause{{Group: "g", Body: " one "}, {Group: "h", Body: "two"}}

	tests := map[string]string{
		"[[CLAUSES]]":     "one\n\ntwo",
		"[[CLAUSE:G]]":    "one",
		"[[CLAUSE: h ]]":  "two",
		"[[CLAUSE:none]]": "",
		"no markers":      "no markers",
	}

	for in, want := range tests {
		if got := SpliceClauses(in, clauses); got != want {
			t.Errorf("SpliceClauses(%q) = %q, want %q", in, got, want)
		}
	}
}
