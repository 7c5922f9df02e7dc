package lang

import (
	"maps"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
)

// Vars is the context map shared by every pass of a render: placeholder name
// to already-formatted value.
//
// Lookup tries the exact name first and then a case-folded match. Writes
// overwrite; when two names fold to the same key, the most recent write
// wins the folded lookup.
//
// A Vars must not be written once regions are rendered concurrently; use
// [Vars.Clone] to derive a private copy.
type Vars struct {
	values map[string]string
	folded map[string]string // lower-cased name -> name in values
}

// NewVars returns a Vars populated from m.
func NewVars(m map[string]string) *Vars {
	v := &Vars{
		values: make(map[string]string, len(m)),
		folded: make(map[string]string, len(m)),
	}

	for _, k := range sortedKeys(m) {
		v.Set(k, m[k])
	}

	return v
}

// Set stores value under name.
func (v *Vars) Set(name, value string) {
	if v.values == nil {
		v.values = make(map[string]string)
		v.folded = make(map[string]string)
	}

	v.values[name] = value
	v.folded[strings.ToLower(name)] = name
}

// Merge stores every entry of m, overwriting existing names.
func (v *Vars) Merge(m map[string]string) {
	for _, k := range sortedKeys(m) {
		v.Set(k, m[k])
	}
}

// Lookup returns the value stored under name, matched exactly or, failing
// that, case-insensitively.
func (v *Vars) Lookup(name string) (string, bool) {
	if v == nil || v.values == nil {
		return "", false
	}

	if s, ok := v.values[name]; ok {
		return s, true
	}

	if k, ok := v.folded[strings.ToLower(name)]; ok {
		return v.values[k], true
	}

	return "", false
}

// Get returns the value stored under name, or the empty string.
func (v *Vars) Get(name string) string {
	s, _ := v.Lookup(name)

	return s
}

// Len returns the number of stored names, aliases included.
func (v *Vars) Len() int {
	if v == nil {
		return 0
	}

	return len(v.values)
}

// Keys returns the stored names in sorted order.
func (v *Vars) Keys() []string {
	if v == nil {
		return nil
	}

	return sortedKeys(v.values)
}

// Map returns a copy of the stored entries.
func (v *Vars) Map() map[string]string {
	if v == nil {
		return map[string]string{}
	}

	return maps.Clone(v.values)
}

// Clone returns an independent copy of v.
func (v *Vars) Clone() *Vars {
	if v == nil {
		return NewVars(nil)
	}

	return &Vars{
		values: maps.Clone(v.values),
		folded: maps.Clone(v.folded),
	}
}

// identName matches the names eligible for alias derivation. Grammar keys
// such as "kind/kinderen" are left alone.
var identName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Canonicalize registers the snake_case and PascalCase forms of every name
// that does not already resolve, so "has_kids" and "HasKids" reach the same
// value. It runs once per context build; lookups never guess at naming
// conventions themselves.
func (v *Vars) Canonicalize() {
	if v == nil {
		return
	}

	for _, name := range v.Keys() {
		if !identName.MatchString(name) {
			continue
		}

		value := v.values[name]

		for _, alias := range []string{
			strcase.ToSnake(name),
			strcase.ToCamel(name),
		} {
			if alias == "" {
				continue
			}

			if _, ok := v.Lookup(alias); ok {
				continue
			}

			v.values[alias] = value
			v.folded[strings.ToLower(alias)] = alias
		}
	}
}
