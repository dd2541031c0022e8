// Package recorder persists every dispatch call of a layer as a ports.Trace.
//
// A Recorder belongs to one session. Wrap a layer with Record to append a
// trace for each Send, Receive and SendReceive passing through it. Storage
// failures are logged and never change the result of the call.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lay/internal/logging"
	"github.com/aretw0/lay/pkg/observability"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/transform"
	"github.com/google/uuid"
)

// Recorder numbers and stores the traces of one session.
type Recorder struct {
	store     ports.TraceStore
	sessionID string
	logger    *slog.Logger
	now       func() time.Time
	timeout   time.Duration

	mu  sync.Mutex
	seq int
}

type Option func(*Recorder)

// WithSessionID fixes the session ID instead of generating one.
func WithSessionID(id string) Option {
	return func(r *Recorder) {
		r.sessionID = id
	}
}

// WithLogger sets the logger used to report storage failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// WithTimeout bounds each store write.
func WithTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		r.timeout = d
	}
}

// New creates a recorder writing to store.
func New(store ports.TraceStore, opts ...Option) *Recorder {
	r := &Recorder{
		store:     store,
		sessionID: newID(),
		logger:    logging.NewNop(),
		now:       time.Now,
		timeout:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SessionID returns the session under which traces are stored.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Traces returns the traces recorded so far.
func (r *Recorder) Traces(ctx context.Context) ([]ports.Trace, error) {
	return r.store.List(ctx, r.sessionID)
}

func (r *Recorder) next() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq
}

func (r *Recorder) record(call string, ops []string, buf any, result any) {
	tr := ports.Trace{
		ID:        newID(),
		SessionID: r.sessionID,
		Seq:       r.next(),
		Call:      call,
		Ops:       ops,
		Result:    "ok",
		Time:      r.now().UTC(),
	}
	if observability.Failed(result) {
		tr.Result = fmt.Sprint(result)
	}
	if s, ok := buf.(fmt.Stringer); ok {
		tr.Bits = s.String()
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.Append(ctx, tr); err != nil {
		r.logger.Error("failed to record trace", "session", r.sessionID, "seq", tr.Seq, "error", err)
	}
}

// Record returns a middleware that stores a trace for every call.
func Record[Q, S, Op any, B ports.Measured[S], Req, Resp any](r *Recorder) transform.Middleware[Q, S, Op, B, Req, Resp] {
	return transform.InspectWith(transform.Hooks[Q, S, Op, B, Req, Resp]{
		Send: func(inner ports.Layer[Q, S, Op, B, Req, Resp], ops []Op) Req {
			res := inner.Send(ops)
			r.record(observability.CallSend, render(ops), nil, res)
			return res
		},
		Receive: func(inner ports.Layer[Q, S, Op, B, Req, Resp], buf B) Resp {
			res := inner.Receive(buf)
			r.record(observability.CallReceive, nil, buf, res)
			return res
		},
		SendReceive: func(inner ports.Layer[Q, S, Op, B, Req, Resp], ops []Op, buf B) Resp {
			res := inner.SendReceive(ops, buf)
			r.record(observability.CallSendReceive, render(ops), buf, res)
			return res
		},
	})
}

func render[Op any](ops []Op) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = fmt.Sprint(op)
	}
	return out
}

// newID returns a time-ordered UUID (v7).
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
