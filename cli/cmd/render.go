package cmd

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/dossier/lang"
	"github.com/ardnew/dossier/log"
	"github.com/ardnew/dossier/pkg"
)

// Render resolves a template against a case and writes the document.
type Render struct {
	Source `embed:""`

	Template []string `arg:""                    help:"Template name(s) or path(s), concatenated in order; '-' reads stdin." name:"template"`
	Header   []string `help:"Header template name or path (repeatable)."`
	Footer   []string `help:"Footer template name or path (repeatable)."`
	Output   string   `default:"-"               help:"Output file or '-' for stdout."                                       short:"o"`
	Format   string   `default:"text"            enum:"text,json,yaml"                                                        help:"Output format." short:"f"`
	Indent   int      `default:"2"               help:"Indent width for JSON and YAML output."`
	Strict   bool     `help:"Fail when placeholders remain unresolved or markup is malformed."`

	Stdout io.Writer `kong:"-"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().With(slog.String("command", "render"))

	doc, err := readDocument(r.Template, r.Header, r.Footer, r.TemplateDir)
	if err != nil {
		return err
	}

	eng, data, err := r.load(ctx, logger)
	if err != nil {
		return err
	}

	res := eng.Render(ctx, doc, data)

	if err := r.write(ctx, res); err != nil {
		return err
	}

	if r.Strict && !res.Diagnostics.Clean() {
		return pkg.ErrUnresolved.Wrapf("%d unresolved, %d warnings",
			res.Diagnostics.Unresolved().Total(),
			len(res.Diagnostics.AllWarnings()))
	}

	return nil
}

func (r *Render) write(ctx context.Context, res lang.Result) (err error) {
	w := r.Stdout
	if w == nil {
		w = os.Stdout
	}

	if r.Output != "" && r.Output != stdinSource {
		f, err := os.Create(r.Output)
		if err != nil {
			return pkg.ErrWriteOutput.Wrap(err)
		}

		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = pkg.ErrWriteOutput.Wrap(cerr)
			}
		}()

		w = f
	}

	var out []byte

	switch r.Format {
	case "json":
		out, err = json.MarshalIndent(makeReport(res), "", strings.Repeat(" ", r.Indent))
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		out = append(out, '\n')

	case "yaml":
		var opts []yaml.EncodeOption
		if r.Indent > 0 {
			opts = append(opts, yaml.Indent(r.Indent))
		}

		out, err = yaml.MarshalContext(ctx, makeReport(res), opts...)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

	default:
		out = []byte(joinRegions(res))
	}

	if _, err := w.Write(out); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	return nil
}

// readDocument reads the body, header and footer templates.
func readDocument(body, headers, footers, dirs []string) (lang.Document, error) {
	var (
		doc lang.Document
		err error
	)

	doc.Body, err = readTemplate(body, dirs)
	if err != nil {
		return doc, err
	}

	for _, h := range headers {
		text, err := readTemplate([]string{h}, dirs)
		if err != nil {
			return doc, err
		}

		doc.Headers = append(doc.Headers, text)
	}

	for _, f := range footers {
		text, err := readTemplate([]string{f}, dirs)
		if err != nil {
			return doc, err
		}

		doc.Footers = append(doc.Footers, text)
	}

	return doc, nil
}

// joinRegions lays the regions out in page order, separated by blank lines.
func joinRegions(res lang.Result) string {
	parts := make([]string, 0, 1+len(res.Headers)+len(res.Footers))
	parts = append(parts, res.Headers...)
	parts = append(parts, res.Body)
	parts = append(parts, res.Footers...)

	for i := range parts {
		parts[i] = strings.TrimRight(parts[i], "\n")
	}

	return strings.Join(parts, "\n\n") + "\n"
}

// report is the structured form of a render result.
type report struct {
	CorrelationID string          `json:"correlation_id"       yaml:"correlation_id"`
	Body          string          `json:"body"                 yaml:"body"`
	Headers       []string        `json:"headers,omitempty"    yaml:"headers,omitempty"`
	Footers       []string        `json:"footers,omitempty"    yaml:"footers,omitempty"`
	Unresolved    map[string]int  `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Warnings      []warningReport `json:"warnings,omitempty"   yaml:"warnings,omitempty"`
}

type warningReport struct {
	Region  string `json:"region,omitempty" yaml:"region,omitempty"`
	Pass    string `json:"pass"             yaml:"pass"`
	Message string `json:"message"          yaml:"message"`
	Tag     string `json:"tag,omitempty"    yaml:"tag,omitempty"`
	Offset  int    `json:"offset"           yaml:"offset"`
}

func makeReport(res lang.Result) report {
	rep := report{
		CorrelationID: res.Diagnostics.CorrelationID,
		Body:          res.Body,
		Headers:       res.Headers,
		Footers:       res.Footers,
	}

	if u := res.Diagnostics.Unresolved(); len(u) > 0 {
		rep.Unresolved = u
	}

	for _, w := range res.Diagnostics.Warnings {
		rep.Warnings = append(rep.Warnings, makeWarningReport("", w))
	}

	for _, rd := range res.Diagnostics.Regions {
		for _, w := range rd.Warnings {
			rep.Warnings = append(rep.Warnings, makeWarningReport(rd.Region, w))
		}
	}

	return rep
}

func makeWarningReport(region string, w lang.Warning) warningReport {
	return warningReport{
		Region:  region,
		Pass:    string(w.Pass),
		Message: w.Message,
		Tag:     w.Tag,
		Offset:  w.Offset,
	}
}
