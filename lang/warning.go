package lang

import (
	"log/slog"
	"strconv"
)

// Pass names the engine stage that produced a [Warning].
type Pass string

const (
	PassConditional Pass = "conditional"
	PassLoop        Pass = "loop"
	PassCollection  Pass = "collection"
)

// Warning is a recoverable problem found while rendering. The affected
// markup is left in the output.
type Warning struct {
	Pass    Pass
	Message string
	Tag     string // offending marker or collection name
	Offset  int    // byte offset of Tag in the pass input, -1 if none
}

// String returns a one-line description of the warning.
func (w Warning) String() string {
	s := string(w.Pass) + ": " + w.Message

	if w.Tag != "" {
		s += " " + strconv.Quote(w.Tag)
	}

	if w.Offset >= 0 {
		s += " at offset " + strconv.Itoa(w.Offset)
	}

	return s
}

// LogValue implements slog.LogValuer.
func (w Warning) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("pass", string(w.Pass)),
		slog.String("issue", w.Message),
	}

	if w.Tag != "" {
		attrs = append(attrs, slog.String("tag", w.Tag))
	}

	if w.Offset >= 0 {
		attrs = append(attrs, slog.Int("offset", w.Offset))
	}

	return slog.GroupValue(attrs...)
}

func warnings(pass Pass, src string, problems []problem) []Warning {
	if len(problems) == 0 {
		return nil
	}

	out := make([]Warning, 0, len(problems))

	for _, p := range problems {
		out = append(out, Warning{
			Pass:    pass,
			Message: p.reason,
			Tag:     p.tag.text(src),
			Offset:  p.tag.start,
		})
	}

	return out
}
