// Package file provides a filesystem implementation of ports.TraceStore.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/ports"
)

const ext = ".json"

// TraceStore implements ports.TraceStore using the local filesystem.
// Each session is one JSON file holding its traces ordered by Seq.
// Safe for concurrent use within one process.
type TraceStore struct {
	BasePath string
	mu       sync.RWMutex
}

// NewTraceStore creates a store rooted at basePath.
// If basePath is empty, it defaults to ".lay/traces".
func NewTraceStore(basePath string) *TraceStore {
	if basePath == "" {
		basePath = filepath.Join(".lay", "traces")
	}
	return &TraceStore{BasePath: basePath}
}

func (s *TraceStore) path(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("sessionID cannot be empty")
	}
	if strings.ContainsAny(sessionID, `/\`) || strings.HasPrefix(sessionID, ".") {
		return "", fmt.Errorf("invalid sessionID %q", sessionID)
	}
	return filepath.Join(s.BasePath, sessionID+ext), nil
}

// Append adds trace to its session file, replacing any trace with the same ID.
func (s *TraceStore) Append(ctx context.Context, trace ports.Trace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(trace.SessionID)
	if err != nil {
		return err
	}
	traces, err := s.read(path)
	if err != nil {
		return err
	}

	traces = slices.DeleteFunc(traces, func(tr ports.Trace) bool { return tr.ID == trace.ID })
	traces = append(traces, trace)
	slices.SortStableFunc(traces, func(a, b ports.Trace) int { return a.Seq - b.Seq })

	return s.write(path, traces)
}

// Get scans the session files for a trace with the given ID.
func (s *TraceStore) Get(ctx context.Context, id string) (ports.Trace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions, err := s.sessions()
	if err != nil {
		return ports.Trace{}, err
	}
	for _, sid := range sessions {
		traces, err := s.read(filepath.Join(s.BasePath, sid+ext))
		if err != nil {
			return ports.Trace{}, err
		}
		for _, tr := range traces {
			if tr.ID == id {
				return tr, nil
			}
		}
	}
	return ports.Trace{}, domain.ErrTraceNotFound
}

// List returns the traces of a session ordered by Seq.
func (s *TraceStore) List(ctx context.Context, sessionID string) ([]ports.Trace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}
	traces, err := s.read(path)
	if err != nil {
		return nil, err
	}
	if traces == nil {
		traces = []ports.Trace{}
	}
	return traces, nil
}

// Sessions returns the session IDs that have a trace file, sorted.
func (s *TraceStore) Sessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions()
}

// Delete removes the session file.
func (s *TraceStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete trace file: %w", err)
	}
	return nil
}

func (s *TraceStore) sessions() ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ext {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, ext))
	}
	slices.Sort(sessions)
	return sessions, nil
}

func (s *TraceStore) read(path string) ([]ports.Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}

	var traces []ports.Trace
	if err := json.Unmarshal(data, &traces); err != nil {
		return nil, fmt.Errorf("failed to unmarshal traces: %w", err)
	}
	return traces, nil
}

// write replaces path atomically through a synced temp file in the same
// directory.
func (s *TraceStore) write(path string, traces []ports.Trace) error {
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure trace directory: %w", err)
	}

	data, err := json.MarshalIndent(traces, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal traces: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, ".tmp-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename replaces path atomically, on Windows too.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

var _ ports.TraceStore = (*TraceStore)(nil)
