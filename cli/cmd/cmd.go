package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/dossier/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable name from ctx, or fallback when unset.
func kongVar(ctx context.Context, name, fallback string) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		if v, ok := ktx.Model.Vars()[name]; ok && v != "" {
			return v
		}
	}

	return fallback
}

// sourceFiles reads the parts of one template in order.
type sourceFiles struct {
	files    []*os.File
	hasStdin bool
}

// Read implements io.Reader by reading from all source files in order,
// including stdin if present.
func (s *sourceFiles) Read(p []byte) (n int, err error) {
	return s.reader().Read(p)
}

// WriteTo implements io.WriterTo by writing all source files to w in order,
// including stdin if present.
func (s *sourceFiles) WriteTo(w io.Writer) (n int64, err error) {
	return io.Copy(w, s.reader())
}

// Close closes every opened file. Stdin is left open.
func (s *sourceFiles) Close() error {
	var first error

	for _, f := range s.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}

func (s *sourceFiles) reader() io.Reader {
	readers := make([]io.Reader, 0, len(s.files)+1)

	for _, f := range s.files {
		readers = append(readers, f)
	}

	if s.hasStdin {
		readers = append(readers, os.Stdin)
	}

	return io.MultiReader(readers...)
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// readTemplate resolves each name against the template search path built
// from dirs and returns the concatenated text of the distinct files. "-"
// reads stdin, which is always read last.
func readTemplate(names, dirs []string) (string, error) {
	if len(names) == 0 {
		return "", nil
	}

	srcs, err := openSourceFiles(names, dirs)
	if err != nil {
		return "", err
	}
	defer srcs.Close()

	var b strings.Builder

	if _, err := srcs.WriteTo(&b); err != nil {
		return "", ErrOpenTemplate.Wrap(pkg.ErrReadInput.Wrap(err)).
			With(slog.Any("template", names))
	}

	return b.String(), nil
}

// openSourceFiles opens the template parts named by names. Duplicates are
// detected by resolving symlinks and comparing device/inode pairs.
func openSourceFiles(names, dirs []string) (*sourceFiles, error) {
	srcs := &sourceFiles{files: make([]*os.File, 0, len(names))}
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, name := range names {
		if name == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		path, err := pkg.FindTemplate(name, dirs...)
		if err != nil {
			srcs.Close()

			return nil, ErrOpenTemplate.Wrap(err).With(slog.String("template", name))
		}

		file, err := openUniqueFile(path, seen)
		if err != nil {
			srcs.Close()

			return nil, ErrOpenTemplate.Wrap(err).With(slog.String("template", path))
		}

		if file != nil {
			srcs.files = append(srcs.files, file)
		}
	}

	// Stdin may have been included via "-" or as a named file.
	// Both of which will be represented by stdinKey in seen.
	_, srcs.hasStdin = seen[stdinKey]

	return srcs, nil
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It returns a nil file and no error for duplicates.
func openUniqueFile(path string, seen map[fileKey]struct{}) (*os.File, error) {
	// Resolve to absolute path to handle relative path duplicates.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	// Resolve symlinks to their target.
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return nil, nil
		}

		seen[key] = struct{}{}
	}

	return os.Open(resolved)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
