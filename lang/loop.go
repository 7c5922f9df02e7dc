package lang

import (
	"regexp"
	"strconv"
	"strings"
)

var loopPattern = regexp.MustCompile(`\[\[\s*([#/])\s*([\p{L}_][\p{L}\p{N}_]*)\s*\]\]`)

// Expand renders every [[#Name]]...[[/Name]] block of text against the
// resolved collections, using [DefaultMaxDepth].
//
// A block whose collection is absent or empty is removed with its tags.
// A body that references the collection's item prefix is repeated once per
// item in source order with the item fields substituted; any other body is
// a guard and is rendered once. Nested blocks are expanded first.
func Expand(text string, cs *Collections) (string, []Warning) {
	return expand(text, cs, DefaultMaxDepth)
}

func expand(text string, cs *Collections, maxDepth int) (string, []Warning) {
	tags := findTags(text, loopPattern, func(kind string) bool {
		return kind == "#"
	})
	if len(tags) == 0 {
		return text, nil
	}

	spans, problems := pair(tags, loopMatches, maxDepth)
	warns := warnings(PassLoop, text, problems)

	out := render(text, spans, func(s *span, inner string) string {
		it, ok := cs.Get(s.open.arg)
		if !ok {
			warns = append(warns, Warning{
				Pass:    PassLoop,
				Message: "unknown collection",
				Tag:     s.open.text(text),
				Offset:  s.open.start,
			})

			return ""
		}

		if len(it.Records) == 0 {
			return ""
		}

		if !referencesPrefix(inner, it.Prefix) {
			return inner
		}

		var b strings.Builder

		for i, rec := range it.Records {
			b.WriteString(substitute(inner, itemLookup(it, rec, i), nil))
		}

		return b.String()
	})

	return out, warns
}

func loopMatches(open, close tag) bool {
	return open.open && !close.open && strings.EqualFold(open.arg, close.arg)
}

// referencesPrefix reports whether body holds a placeholder addressed to
// the collection's items.
func referencesPrefix(body, prefix string) bool {
	if prefix == "" {
		return false
	}

	for _, t := range findTokens(body) {
		if hasPrefixFold(t.name, prefix) {
			return true
		}
	}

	return false
}

// itemLookup resolves prefixed names against one item. Names outside the
// prefix are left for the placeholder pass.
func itemLookup(it *Items, rec Record, index int) func(token) (string, bool) {
	return func(t token) (string, bool) {
		name := t.name
		if !hasPrefixFold(name, it.Prefix) {
			return "", false
		}

		field := strings.ToLower(name[len(it.Prefix):])

		if field == "index" {
			return strconv.Itoa(index + 1), true
		}

		if v, ok := rec[field]; ok {
			return v, true
		}

		if containsFold(it.Fields, field) {
			return "", true
		}

		return "", false
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
