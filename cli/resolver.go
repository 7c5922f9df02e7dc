package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/dossier/log"
)

// resolve is a [kong.ConfigurationLoader] for YAML configuration files:
//
//	kong.Configuration(resolve, "/path/to/config.yaml")
//
// Top-level keys name flags; a key may use the flag's hyphens or
// underscores. A mapping named after a command holds values that apply only
// to that command and take precedence over top-level keys:
//
//	log_level: info
//	article_label: Artikel
//	template_dir: [~/templates]
//	render:
//	  format: json
//	  strict: true
//
// Command-line flags override config file values. A file that cannot be
// parsed is reported and ignored.
func resolve(r io.Reader) (kong.Resolver, error) {
	var conf config

	if err := yaml.NewDecoder(r).Decode(&conf); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("ignoring unreadable configuration", slog.Any("error", err))

		return config{}, nil
	}

	return conf, nil
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if parent != nil {
		if node := parent.Node(); node != nil && node.Type == kong.CommandNode {
			if section, ok := c[node.Name].(map[string]any); ok {
				if value, ok := lookup(section, flag.Name); ok {
					return value, nil
				}
			}
		}
	}

	if value, ok := lookup(c, flag.Name); ok {
		return value, nil
	}

	return nil, nil
}

// lookup returns the value of the flag name from m in a form kong can map.
// Mappings are command sections, never flag values.
func lookup(m map[string]any, name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		value, ok := m[key]
		if !ok {
			continue
		}

		if _, section := value.(map[string]any); section {
			return nil, false
		}

		return flagValue(value), true
	}

	return nil, false
}

// flagValue converts decoded YAML scalars and sequences to the strings kong
// parses flags from. Booleans are kept.
func flagValue(v any) any {
	switch v := v.(type) {
	case bool, string:
		return v

	case int:
		return strconv.Itoa(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			parts = append(parts, fmt.Sprint(flagValue(e)))
		}

		return strings.Join(parts, ",")

	default:
		return v
	}
}
