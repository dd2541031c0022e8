package middleware

import (
	"context"
	"regexp"
	"slices"

	"github.com/aretw0/lay/pkg/ports"
)

// Redacted replaces operation text matched by a redaction pattern.
const Redacted = "***"

type redactMiddleware struct {
	next     ports.TraceStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks every recorded
// operation whose text matches one of the patterns. Patterns must compile.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.TraceStore) ports.TraceStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Append(ctx context.Context, trace ports.Trace) error {
	// The caller keeps its slice.
	trace.Ops = slices.Clone(trace.Ops)
	for i, op := range trace.Ops {
		if m.matches(op) {
			trace.Ops[i] = Redacted
		}
	}
	return m.next.Append(ctx, trace)
}

func (m *redactMiddleware) matches(s string) bool {
	for _, re := range m.patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func (m *redactMiddleware) Get(ctx context.Context, id string) (ports.Trace, error) {
	return m.next.Get(ctx, id)
}

func (m *redactMiddleware) List(ctx context.Context, sessionID string) ([]ports.Trace, error) {
	return m.next.List(ctx, sessionID)
}

func (m *redactMiddleware) Sessions(ctx context.Context) ([]string, error) {
	return m.next.Sessions(ctx)
}

func (m *redactMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}
