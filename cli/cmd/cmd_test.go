package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/dossier/pkg"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return dir
}

func TestReadTemplate_Empty(t *testing.T) {
	text, err := readTemplate(nil, nil)
	if err != nil || text != "" {
		t.Errorf("readTemplate(nil) = %q, %v", text, err)
	}
}

func TestReadTemplate_Concatenates(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"head.txt": "first\n",
		"body.txt": "second\n",
	})

	text, err := readTemplate([]string{
		filepath.Join(dir, "head.txt"),
		filepath.Join(dir, "body.txt"),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if text != "first\nsecond\n" {
		t.Errorf("readTemplate() = %q", text)
	}
}

func TestReadTemplate_SearchDirs(t *testing.T) {
	dir := writeFiles(t, map[string]string{"convenant.txt": "body"})

	text, err := readTemplate([]string{"convenant.txt"}, []string{dir})
	if err != nil {
		t.Fatal(err)
	}

	if text != "body" {
		t.Errorf("readTemplate() = %q", text)
	}
}

func TestReadTemplate_Deduplicates(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "once"})
	path := filepath.Join(dir, "a.txt")
	link := filepath.Join(dir, "link.txt")

	if err := os.Symlink(path, link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	rel, err := filepath.Rel(wd, path)
	if err != nil {
		rel = path
	}

	text, err := readTemplate([]string{path, link, rel}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if text != "once" {
		t.Errorf("readTemplate() = %q, want a single copy", text)
	}
}

func TestReadTemplate_NotFound(t *testing.T) {
	_, err := readTemplate([]string{"no-such-template.txt"}, []string{t.TempDir()})
	if err == nil {
		t.Fatal("readTemplate() error = nil")
	}

	if !errors.Is(err, ErrOpenTemplate) {
		t.Errorf("error %v is not ErrOpenTemplate", err)
	}

	if !errors.Is(err, pkg.ErrTemplateNotFound) {
		t.Errorf("error %v is not pkg.ErrTemplateNotFound", err)
	}
}

func TestOpenSourceFiles_Stdin(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "a"})

	srcs, err := openSourceFiles([]string{stdinSource, filepath.Join(dir, "a.txt")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer srcs.Close()

	if !srcs.hasStdin {
		t.Error("hasStdin = false, want true")
	}

	if len(srcs.files) != 1 {
		t.Errorf("len(files) = %d, want 1", len(srcs.files))
	}
}
