package lang

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenName matches an optional case modifier and a placeholder name.
// Names start with a letter or underscore; "/" is allowed so grammar keys
// like "kind/kinderen" resolve like any other name.
const tokenName = `\s*(?:(?i:(caps|upper|lower))\s*:\s*)?([\p{L}_][\p{L}\p{N}_.\-/]*)\s*`

// placeholderPattern matches the four bracket styles in one left-to-right
// scan. The double-bracket form is listed first so "[[X]]" is never
// consumed as "[X]".
var placeholderPattern = regexp.MustCompile(
	`\[\[` + tokenName + `\]\]` +
		`|<<` + tokenName + `>>` +
		`|\{` + tokenName + `\}` +
		`|\[` + tokenName + `\]`,
)

// Numbering and clause markers are resolved by [Number] and
// [SpliceClauses], never by context lookup. Only the exact upper-case
// double-bracket form is a marker; "[[Article]]" or "{ARTICLE}" is an
// ordinary placeholder.
const (
	markerArticle       = "ARTICLE"
	markerSubarticle    = "SUBARTICLE"
	markerArticleNumber = "ARTICLE_NUMBER"
	markerArticleReset  = "ARTICLE_RESET"
	markerClauses       = "CLAUSES"
)

func isReserved(t token) bool {
	if !t.double || t.modifier != "" {
		return false
	}

	switch t.name {
	case markerArticle, markerSubarticle, markerArticleNumber,
		markerArticleReset, markerClauses:
		return true
	}

	return false
}

// Unresolved counts the placeholder tokens left in the text because no
// context entry existed, keyed by the verbatim token.
type Unresolved map[string]int

// Total returns the number of unresolved occurrences.
func (u Unresolved) Total() int {
	n := 0
	for _, c := range u {
		n += c
	}

	return n
}

// Names returns the distinct unresolved tokens in sorted order.
func (u Unresolved) Names() []string { return sortedKeys(u) }

// Add merges the counts of other into u.
func (u Unresolved) Add(other Unresolved) {
	for k, c := range other {
		u[k] += c
	}
}

// token is one placeholder occurrence.
type token struct {
	start, end int
	modifier   string // lower-cased: "", "caps", "upper" or "lower"
	name       string
	double     bool // "[[name]]" form
}

func (t token) text(src string) string { return src[t.start:t.end] }

func findTokens(src string) []token {
	matches := placeholderPattern.FindAllStringSubmatchIndex(src, -1)
	tokens := make([]token, 0, len(matches))

	for _, m := range matches {
		t := token{start: m[0], end: m[1]}

		// Submatches come in (modifier, name) pairs, one pair per style.
		for g := 2; g+3 < len(m); g += 4 {
			if m[g+2] < 0 {
				continue
			}

			if m[g] >= 0 {
				t.modifier = strings.ToLower(src[m[g]:m[g+1]])
			}

			t.name = src[m[g+2]:m[g+3]]
			t.double = g == 2

			break
		}

		tokens = append(tokens, t)
	}

	return tokens
}

// substitute replaces every token for which lookup reports a value. Tokens
// without a value are passed to miss (if non-nil) and left verbatim.
func substitute(
	src string,
	lookup func(t token) (string, bool),
	miss func(t token),
) string {
	tokens := findTokens(src)
	if len(tokens) == 0 {
		return src
	}

	var b strings.Builder

	b.Grow(len(src))

	pos := 0

	for _, t := range tokens {
		value, ok := lookup(t)
		if !ok {
			if miss != nil {
				miss(t)
			}

			continue
		}

		b.WriteString(src[pos:t.start])
		b.WriteString(applyModifier(t.modifier, value))

		pos = t.end
	}

	b.WriteString(src[pos:])

	return b.String()
}

func applyModifier(modifier, value string) string {
	switch modifier {
	case "caps":
		r, size := utf8.DecodeRuneInString(value)
		if r == utf8.RuneError {
			return value
		}

		return string(unicode.ToUpper(r)) + value[size:]

	case "upper":
		return strings.ToUpper(value)

	case "lower":
		return strings.ToLower(value)
	}

	return value
}

// Resolve substitutes every placeholder in text with its value in vars.
//
// Tokens with no entry are left verbatim and counted in the returned
// [Unresolved]; numbering markers are never looked up or counted. Text
// without placeholders is returned unchanged.
func Resolve(text string, vars *Vars) (string, Unresolved) {
	unresolved := Unresolved{}

	out := substitute(text,
		func(t token) (string, bool) {
			if isReserved(t) {
				return "", false
			}

			return vars.Lookup(t.name)
		},
		func(t token) {
			if !isReserved(t) {
				unresolved[t.text(text)]++
			}
		},
	)

	return out, unresolved
}
