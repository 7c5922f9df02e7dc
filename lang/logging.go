package lang

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
)

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

type correlationKey struct{}

// WithCorrelationID returns a copy of ctx carrying the request correlation
// identifier attached to every diagnostic a render logs.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the correlation identifier stored in ctx.
func CorrelationID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	id, ok := ctx.Value(correlationKey{}).(string)

	return id, ok && id != ""
}

// ensureCorrelationID returns ctx with a correlation identifier, generating
// a random one when the caller supplied none.
func ensureCorrelationID(ctx context.Context) (context.Context, string) {
	if id, ok := CorrelationID(ctx); ok {
		return ctx, id
	}

	id := uuid.NewString()

	return WithCorrelationID(ctx, id), id
}

func correlationAttr(id string) slog.Attr {
	return slog.String("correlation_id", id)
}
