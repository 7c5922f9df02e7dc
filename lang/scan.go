package lang

import (
	"regexp"
	"strings"
)

// DefaultMaxDepth bounds block nesting for the conditional and loop passes.
// Opens nested deeper than this are left in the text and reported.
const DefaultMaxDepth = 64

// tag is one open or close marker found in the text.
type tag struct {
	start, end int // byte offsets of the marker
	open       bool
	arg        string // condition or collection name, trimmed
}

func (t tag) text(src string) string { return src[t.start:t.end] }

// span is a matched open/close pair and the spans nested inside it.
type span struct {
	open, close tag
	children    []*span
}

// frame is an open tag waiting for its close on the scanner stack.
type frame struct {
	open     tag
	literal  bool // exceeded the depth bound; stays in the text
	children []*span
}

// problem describes a tag the scanner could not pair.
type problem struct {
	tag    tag
	reason string
}

const (
	reasonUnterminated = "unterminated block"
	reasonUnexpected   = "close without open"
	reasonMismatched   = "close does not match open"
	reasonTooDeep      = "nesting exceeds maximum depth"
)

// findTags returns the open and close markers of re in document order.
// Submatch 1 must be non-empty for open markers and submatch 2 holds the
// argument.
func findTags(src string, re *regexp.Regexp, isOpen func(kind string) bool) []tag {
	matches := re.FindAllStringSubmatchIndex(src, -1)
	tags := make([]tag, 0, len(matches))

	for _, m := range matches {
		tags = append(tags, tag{
			start: m[0],
			end:   m[1],
			open:  isOpen(src[m[2]:m[3]]),
			arg:   strings.TrimSpace(src[m[4]:m[5]]),
		})
	}

	return tags
}

// pair builds the span forest for tags with a stack scanner. A close pairs
// with the nearest open below it on the stack that match accepts; opens
// skipped over are unterminated and their nested spans are hoisted into the
// enclosing span. Unpaired markers are returned as problems and remain in
// the text verbatim.
func pair(
	tags []tag,
	match func(open, close tag) bool,
	maxDepth int,
) ([]*span, []problem) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var (
		roots    []*span
		problems []problem
		stack    []*frame
	)

	// attach adds s to the innermost frame, or to the roots.
	attach := func(s ...*span) {
		if n := len(stack); n > 0 {
			stack[n-1].children = append(stack[n-1].children, s...)
		} else {
			roots = append(roots, s...)
		}
	}

	// unwind pops frames down to depth, reporting each as unterminated and
	// hoisting its children.
	unwind := func(depth int) {
		for len(stack) > depth {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !f.literal {
				problems = append(problems, problem{f.open, reasonUnterminated})
			}

			attach(f.children...)
		}
	}

	for _, t := range tags {
		if t.open {
			f := &frame{open: t}

			if active(stack) >= maxDepth {
				f.literal = true

				problems = append(problems, problem{t, reasonTooDeep})
			}

			stack = append(stack, f)

			continue
		}

		i := len(stack) - 1
		for i >= 0 && !match(stack[i].open, t) {
			i--
		}

		if i < 0 {
			reason := reasonUnexpected
			if len(stack) > 0 {
				reason = reasonMismatched
			}

			problems = append(problems, problem{t, reason})

			continue
		}

		unwind(i + 1)

		f := stack[i]
		stack = stack[:i]

		if f.literal {
			attach(f.children...)

			continue
		}

		attach(&span{open: f.open, close: t, children: f.children})
	}

	unwind(0)

	return roots, problems
}

func active(stack []*frame) int {
	n := 0

	for _, f := range stack {
		if !f.literal {
			n++
		}
	}

	return n
}

// render rebuilds src with every span replaced by fn. Nested spans are
// rendered first, so fn receives the already-rendered inner text.
func render(src string, spans []*span, fn func(s *span, inner string) string) string {
	return renderRange(src, 0, len(src), spans, fn)
}

func renderRange(
	src string,
	from, to int,
	spans []*span,
	fn func(s *span, inner string) string,
) string {
	var b strings.Builder

	b.Grow(to - from)

	pos := from

	for _, s := range spans {
		b.WriteString(src[pos:s.open.start])

		inner := renderRange(src, s.open.end, s.close.start, s.children, fn)
		b.WriteString(fn(s, inner))

		pos = s.close.end
	}

	b.WriteString(src[pos:to])

	return b.String()
}
