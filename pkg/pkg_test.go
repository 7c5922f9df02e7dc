package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "dossier"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestDescription(t *testing.T) {
	if Description == "" {
		t.Error("Expected Description to be set")
	}
}

func TestVersion(t *testing.T) {
	// Version is embedded from VERSION file, so it should not be empty.
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); strings.TrimSpace(Version) != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Error("Expected Author to have at least one entry")
	}

	expectedName := "ardnew"
	expectedEmail := "andrew@ardnew.com"

	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == expectedName && a.Email == expectedEmail
	}) {
		t.Errorf("Expected Author to contain %q, %q", expectedName, expectedEmail)
	}
}

func TestErrorChain(t *testing.T) {
	cause := errors.New("permission denied")
	err := ErrReadInput.Wrap(cause)

	if !errors.Is(err, ErrReadInput) {
		t.Error("Expected chain to match ErrReadInput")
	}

	if !errors.Is(err, cause) {
		t.Error("Expected chain to match its cause")
	}

	if errors.Is(err, ErrWriteOutput) {
		t.Error("Expected chain not to match ErrWriteOutput")
	}

	if got, want := err.Error(), "failed to read input: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	// Deriving must not disturb the sentinel.
	_ = ErrReadInput.Wrapf("other")

	if len(ErrReadInput) != 1 {
		t.Errorf("sentinel modified: %v", ErrReadInput)
	}
}

func TestMakeError(t *testing.T) {
	if MakeError() != nil {
		t.Error("Expected nil for no errors")
	}

	if MakeError(nil, nil) != nil {
		t.Error("Expected nil for nil errors")
	}
}

func TestSearchPath(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	missing := filepath.Join(first, "missing")

	t.Setenv(PathEnv, second+string(os.PathListSeparator)+missing)

	path := SearchPath(first)

	if len(path) < 2 || path[0] != first || path[1] != second {
		t.Errorf("SearchPath() = %v, want [%s %s ...]", path, first, second)
	}

	if slices.Contains(path, missing) {
		t.Errorf("SearchPath() = %v, want %s dropped", path, missing)
	}
}

func TestFindTemplate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "convenant.txt")

	if err := os.WriteFile(file, []byte("[[ARTICLE]]"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(PathEnv, "")

	got, err := FindTemplate("convenant.txt", dir)
	if err != nil || got != file {
		t.Errorf("FindTemplate() = %q, %v, want %q", got, err, file)
	}

	got, err = FindTemplate(file)
	if err != nil || got != file {
		t.Errorf("FindTemplate(abs) = %q, %v, want %q", got, err, file)
	}

	_, err = FindTemplate("absent.txt", dir)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("FindTemplate(absent) error = %v, want %v", err, ErrTemplateNotFound)
	}

	_, err = FindTemplate(filepath.Join(dir, "absent.txt"))
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("FindTemplate(abs absent) error = %v, want %v", err, ErrTemplateNotFound)
	}
}
