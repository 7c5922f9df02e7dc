package cli

import (
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

const testConfig = `
log_level: debug
indent: 8
render:
  format: json
  indent: 4
  dirs: [a, b]
  strict: true
`

func TestResolve_Flat(t *testing.T) {
	res, err := resolve(strings.NewReader(testConfig))
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}

	for _, name := range []string{"log_level", "log-level"} {
		val, err := res.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", name, err)
		}

		if val != "debug" {
			t.Errorf("Resolve(%s) = %v, want debug", name, val)
		}
	}

	val, _ := res.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "indent"}})
	if val != "8" {
		t.Errorf("Resolve(indent) = %#v, want \"8\"", val)
	}

	// Command sections are not flag values.
	val, _ = res.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "render"}})
	if val != nil {
		t.Errorf("Resolve(render) = %v, want nil", val)
	}
}

func TestResolve_Invalid(t *testing.T) {
	for _, doc := range []string{"", ": : :\n\t- ]"} {
		res, err := resolve(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("resolve(%q) error = %v", doc, err)
		}

		val, err := res.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-level"}})
		if err != nil || val != nil {
			t.Errorf("Resolve() = %v, %v, want nil", val, err)
		}
	}
}

type testCLI struct {
	LogLevel string `default:"info"`
	Indent   int    `default:"2"`

	Render struct {
		Format string   `default:"text"`
		Indent int      `default:"2"`
		Dirs   []string `sep:","`
		Strict bool
	} `cmd:""`

	Check struct {
		Format string `default:"text"`
	} `cmd:""`
}

func parseWithConfig(t *testing.T, args ...string) *testCLI {
	t.Helper()

	res, err := resolve(strings.NewReader(testConfig))
	if err != nil {
		t.Fatal(err)
	}

	var cli testCLI

	parser, err := kong.New(&cli, kong.Resolvers(res))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}

	return &cli
}

func TestResolve_CommandSection(t *testing.T) {
	cli := parseWithConfig(t, "render")

	if cli.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cli.LogLevel)
	}

	if cli.Render.Format != "json" {
		t.Errorf("Render.Format = %q, want json", cli.Render.Format)
	}

	if cli.Render.Indent != 4 {
		t.Errorf("Render.Indent = %d, want section value 4", cli.Render.Indent)
	}

	if !slices.Equal(cli.Render.Dirs, []string{"a", "b"}) {
		t.Errorf("Render.Dirs = %v", cli.Render.Dirs)
	}

	if !cli.Render.Strict {
		t.Error("Render.Strict = false")
	}
}

func TestResolve_SectionIsScoped(t *testing.T) {
	cli := parseWithConfig(t, "check")

	if cli.Check.Format != "text" {
		t.Errorf("Check.Format = %q, want default text", cli.Check.Format)
	}
}

func TestResolve_FlagsOverride(t *testing.T) {
	cli := parseWithConfig(t, "render", "--format=yaml", "--log-level=warn")

	if cli.Render.Format != "yaml" {
		t.Errorf("Render.Format = %q, want yaml", cli.Render.Format)
	}

	if cli.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cli.LogLevel)
	}
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{true, true},
		{"x", "x"},
		{uint64(3), "3"},
		{int64(-3), "-3"},
		{1.5, "1.5"},
		{[]any{"a", uint64(2)}, "a,2"},
	}

	for _, tt := range tests {
		if got := flagValue(tt.in); got != tt.want {
			t.Errorf("flagValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
