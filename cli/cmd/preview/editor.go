package preview

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/ardnew/dossier/log"
)

const defaultEditor = "vi"

// editTemplateCommand implements [tea.ExecCommand]. It writes the template
// buffer to a temp file, opens the user's editor on it and reads the result
// back.
type editTemplateCommand struct {
	text    string
	edited  string
	ctxFunc func() context.Context
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editTemplateCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editTemplateCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editTemplateCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run opens the editor and stores the edited text.
func (c *editTemplateCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "dossier-preview-*.txt")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if _, err := f.WriteString(c.text); err != nil {
		f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c.edited = string(data)

	c.logger.TraceContext(ctx, "template edited",
		slog.Int("before", len(c.text)),
		slog.Int("after", len(c.edited)),
	)

	return nil
}

// runEditor launches the user's editor on the file at path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
