package ports

import (
	"context"
	"time"
)

// Trace is the persisted record of one dispatched batch.
type Trace struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Call      string    `json:"call"`
	Ops       []string  `json:"ops"`
	Result    string    `json:"result,omitempty"`
	Bits      string    `json:"bits,omitempty"`
	Sealed    string    `json:"sealed,omitempty"`
	Time      time.Time `json:"time"`
}

// TraceStore persists dispatched batches so that a run can be audited later.
type TraceStore interface {
	// Append stores a trace under its session.
	Append(ctx context.Context, trace Trace) error

	// Get retrieves a trace by ID.
	// Returns domain.ErrTraceNotFound if the trace does not exist.
	Get(ctx context.Context, id string) (Trace, error)

	// List returns the traces of a session ordered by Seq.
	// An unknown session yields an empty list.
	List(ctx context.Context, sessionID string) ([]Trace, error)

	// Sessions returns the IDs of all sessions with at least one trace.
	Sessions(ctx context.Context) ([]string, error)

	// Delete removes every trace of a session.
	Delete(ctx context.Context, sessionID string) error
}
