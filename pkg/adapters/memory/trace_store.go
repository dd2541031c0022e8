// Package memory provides in-process implementations of the storage ports.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/ports"
)

// TraceStore implements ports.TraceStore in memory.
// Safe for concurrent use.
type TraceStore struct {
	byID      map[string]ports.Trace
	bySession map[string][]string
	mu        sync.RWMutex
}

// NewTraceStore creates an empty in-memory trace store.
func NewTraceStore() *TraceStore {
	return &TraceStore{
		byID:      make(map[string]ports.Trace),
		bySession: make(map[string][]string),
	}
}

func clone(tr ports.Trace) ports.Trace {
	tr.Ops = slices.Clone(tr.Ops)
	return tr
}

// Append stores a copy of trace.
func (s *TraceStore) Append(ctx context.Context, trace ports.Trace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[trace.ID]; !exists {
		s.bySession[trace.SessionID] = append(s.bySession[trace.SessionID], trace.ID)
	}
	s.byID[trace.ID] = clone(trace)
	return nil
}

// Get returns a copy of the trace with the given ID.
func (s *TraceStore) Get(ctx context.Context, id string) (ports.Trace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tr, ok := s.byID[id]
	if !ok {
		return ports.Trace{}, domain.ErrTraceNotFound
	}
	return clone(tr), nil
}

// List returns the traces of a session ordered by Seq.
func (s *TraceStore) List(ctx context.Context, sessionID string) ([]ports.Trace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.bySession[sessionID]
	out := make([]ports.Trace, 0, len(ids))
	for _, id := range ids {
		out = append(out, clone(s.byID[id]))
	}
	slices.SortStableFunc(out, func(a, b ports.Trace) int { return a.Seq - b.Seq })
	return out, nil
}

// Sessions returns the IDs of sessions that have traces.
func (s *TraceStore) Sessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.bySession))
	for id := range s.bySession {
		sessions = append(sessions, id)
	}
	slices.Sort(sessions)
	return sessions, nil
}

// Delete removes all traces of a session.
func (s *TraceStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.bySession[sessionID] {
		delete(s.byID, id)
	}
	delete(s.bySession, sessionID)
	return nil
}

var _ ports.TraceStore = (*TraceStore)(nil)
