package lang

import (
	"regexp"
	"strings"
)

var (
	conditionalPattern = regexp.MustCompile(`(?i)\[\[\s*(IF|ENDIF)\s*:([^\]]*)\]\]`)
	blankRun           = regexp.MustCompile(`\n(?:[ \t]*\n){3,}`)
)

// Strip removes or unwraps every [[IF:Cond]]...[[ENDIF:Cond]] block of text
// according to vars, using [DefaultMaxDepth].
//
// Cond is "Name", "!Name", "Name=value" or "Name!=value". The close tag
// repeats the condition or names only its field. Unpaired tags stay in the
// output and are reported as warnings; everything around them is still
// processed. Runs of three or more blank lines are collapsed to one.
func Strip(text string, vars *Vars) (string, []Warning) {
	return strip(text, vars, DefaultMaxDepth)
}

func strip(text string, vars *Vars, maxDepth int) (string, []Warning) {
	tags := findTags(text, conditionalPattern, func(kind string) bool {
		return strings.EqualFold(kind, "IF")
	})
	if len(tags) == 0 {
		return text, nil
	}

	spans, problems := pair(tags, conditionMatches, maxDepth)

	out := render(text, spans, func(s *span, inner string) string {
		if parseInline(s.open.arg).holds(vars) {
			return inner
		}

		return ""
	})

	return blankRun.ReplaceAllString(out, "\n\n"), warnings(PassConditional, text, problems)
}

// inlineCondition is the single-field test used by conditional blocks.
type inlineCondition struct {
	field  string
	negate bool
	cmp    string // "", "=" or "!="
	value  string
}

func parseInline(arg string) inlineCondition {
	arg = strings.TrimSpace(arg)

	if i := strings.Index(arg, "!="); i >= 0 {
		return inlineCondition{
			field: strings.TrimSpace(arg[:i]),
			cmp:   "!=",
			value: strings.TrimSpace(arg[i+2:]),
		}
	}

	if i := strings.IndexByte(arg, '='); i >= 0 {
		return inlineCondition{
			field: strings.TrimSpace(arg[:i]),
			cmp:   "=",
			value: strings.TrimSpace(arg[i+1:]),
		}
	}

	if rest, ok := strings.CutPrefix(arg, "!"); ok {
		return inlineCondition{field: strings.TrimSpace(rest), negate: true}
	}

	return inlineCondition{field: arg}
}

func (c inlineCondition) holds(vars *Vars) bool {
	v := vars.Get(c.field)

	switch c.cmp {
	case "=":
		return equalValues(v, c.value)
	case "!=":
		return !equalValues(v, c.value)
	}

	return truthy(v) != c.negate
}

// conditionMatches accepts a close tag that repeats the open condition or
// names its field.
func conditionMatches(open, close tag) bool {
	if !open.open || close.open {
		return false
	}

	if strings.EqualFold(normalizeArg(open.arg), normalizeArg(close.arg)) {
		return true
	}

	return strings.EqualFold(parseInline(open.arg).field, normalizeArg(close.arg))
}

func normalizeArg(arg string) string {
	return strings.Join(strings.Fields(arg), "")
}

// truthy is the light boolean coercion of conditional blocks: a value is
// true unless it is blank, numerically zero, or "false".
func truthy(v string) bool {
	v = strings.TrimSpace(v)

	if v == "" || strings.EqualFold(v, "false") {
		return false
	}

	if f, ok := parseNumber(v); ok && f == 0 {
		return false
	}

	return true
}
