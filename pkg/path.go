package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// PathEnv names the environment variable holding the template search path,
// a list of directories separated by [os.PathListSeparator].
const PathEnv = "DOSSIER_PATH"

// Prefix returns the base prefix string used to construct the path to the
// configuration directory.
//
// By default, Prefix is the base name of the executable file unless it matches
// one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with Name
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		exe, err := os.Executable()
		if err == nil {
			id = exe
		}

		ext := filepath.Ext(filepath.Base(id))
		id = strings.TrimSuffix(filepath.Base(id), ext)

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): Name, // default output from dlv
			regexp.MustCompile(`^\.+`):             "",   // remove leading dot(s)
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		if id == "" {
			id = Name
		}

		return id
	},
)

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return userDir(os.UserConfigDir, ".config")
	},
)

// CacheDir returns the cache directory path used for transient files.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return userDir(os.UserCacheDir, ".cache")
	},
)

func userDir(base func() (string, error), fallback string) string {
	dir, err := base()
	if err != nil {
		dir, err = os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(dir, fallback)
		} else {
			dir, err = os.Getwd()
			if err != nil {
				dir = "."
			}
		}
	}

	return filepath.Join(dir, Prefix())
}

// SearchPath returns the template search directories: dirs first, then the
// entries of $DOSSIER_PATH, then the templates directory under [ConfigDir].
// Entries that are not existing directories are dropped.
func SearchPath(dirs ...string) []string {
	subject := filepath.SplitList(os.Getenv(PathEnv))
	subject = append(subject, filepath.Join(ConfigDir(), "templates"))

	path := mung.Make(
		mung.WithSubjectItems(subject...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
	).String()

	return slices.DeleteFunc(filepath.SplitList(path), func(dir string) bool {
		return !isDir(dir)
	})
}

// FindTemplate resolves name against the search path built from dirs. Names
// containing a path separator, and names of existing files, are returned
// as given.
func FindTemplate(name string, dirs ...string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) || isFile(name) {
		if !isFile(name) {
			return "", ErrTemplateNotFound.Wrapf("%s", name)
		}

		return name, nil
	}

	for _, dir := range SearchPath(dirs...) {
		if p := filepath.Join(dir, name); isFile(p) {
			return p, nil
		}
	}

	return "", ErrTemplateNotFound.Wrapf("%s", name)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
