package preview

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/dossier/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "vars", "clauses", "edit", "clear", "quit"}

// markupNames are the tag names that are not context variables.
var markupNames = []string{
	"ARTICLE", "SUBARTICLE", "ARTICLE_NUMBER", "ARTICLE_RESET",
	"IF", "ENDIF", "CLAUSE",
}

// openers start a placeholder. Completion is offered only inside one.
var openers = []string{"[[", "{{", "<<"}

// isWordBoundary reports whether r delimits a placeholder name. The slash is
// not a boundary because grammar keys such as kind/kinderen contain one.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'[', ']', '{', '}', '<', '>',
		'#', ':', '!', '=', ',', '&', '|', '(', ')':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor position and its byte boundaries
// within input. A leading slash, as in a loop close tag, is not part of the
// word.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	for start < end && input[start] == '/' {
		start++
	}

	return input[start:end], start, end
}

// inPlaceholder reports whether offset lies after an opener that has not been
// closed yet.
func inPlaceholder(input string, offset int) bool {
	prefix := input[:offset]

	open := -1

	for _, o := range openers {
		open = max(open, strings.LastIndex(prefix, o))
	}

	if open < 0 {
		return false
	}

	rest := prefix[open+2:]

	return !strings.ContainsAny(rest, "]}>")
}

// completionNames returns the names offered inside a placeholder: context
// variables, collection names and item fields, and markup tags.
func completionNames(vars *lang.Vars) []string {
	names := vars.Keys()
	names = append(names, markupNames...)

	reg := lang.DefaultRegistry()

	for _, name := range reg.Names() {
		c, _ := reg.Lookup(name)

		names = append(names, c.Name, c.Prefix+"INDEX")
		for _, f := range c.Fields {
			names = append(names, c.Prefix+strings.ToUpper(f))
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// computeMatches calculates the fuzzy matches for the word at the cursor.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)
	if word == "" {
		return nil, wordStart, wordEnd
	}

	candidates := ctrlCommands

	if m.mode == modeRender {
		if !inPlaceholder(input, wordStart) {
			return nil, wordStart, wordEnd
		}

		candidates = m.names
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}
