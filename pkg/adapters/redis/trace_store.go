// Package redis persists dispatch traces in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// farFuture is the index score of sessions that never expire (2100-01-01).
const farFuture = 4102444800

// TraceStore implements ports.TraceStore using Redis.
//
// Each trace is a JSON string key. A sorted set per session orders trace IDs
// by Seq, and a global sorted set indexes sessions by expiry.
type TraceStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*TraceStore)

// WithTTL sets the expiration for traces. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *TraceStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *TraceStore) {
		s.prefix = prefix
	}
}

// New creates a Redis trace store connected to address.
func New(address, password string, db int, opts ...Option) *TraceStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis trace store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *TraceStore {
	store := &TraceStore{
		client: client,
		prefix: "lay:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *TraceStore) traceKey(id string) string {
	return s.prefix + "trace:" + id
}

func (s *TraceStore) sessionKey(sessionID string) string {
	return s.prefix + "session:" + sessionID
}

func (s *TraceStore) indexKey() string {
	return s.prefix + "index"
}

// Append stores trace and indexes it under its session.
func (s *TraceStore) Append(ctx context.Context, trace ports.Trace) error {
	data, err := json.Marshal(trace)
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.traceKey(trace.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.sessionKey(trace.SessionID), backend.Z{Score: float64(trace.Seq), Member: trace.ID})
	if s.ttl > 0 {
		pipe.Expire(ctx, s.sessionKey(trace.SessionID), s.ttl)
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: trace.SessionID})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append trace: %w", err)
	}
	return nil
}

// Get retrieves a trace by ID.
func (s *TraceStore) Get(ctx context.Context, id string) (ports.Trace, error) {
	val, err := s.client.Get(ctx, s.traceKey(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return ports.Trace{}, domain.ErrTraceNotFound
		}
		return ports.Trace{}, fmt.Errorf("failed to get trace: %w", err)
	}
	return decode(val)
}

// List returns the traces of a session ordered by Seq. Expired traces are skipped.
func (s *TraceStore) List(ctx context.Context, sessionID string) ([]ports.Trace, error) {
	ids, err := s.client.ZRange(ctx, s.sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}
	if len(ids) == 0 {
		return []ports.Trace{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.traceKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load traces: %w", err)
	}

	traces := make([]ports.Trace, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		tr, err := decode(str)
		if err != nil {
			return nil, err
		}
		traces = append(traces, tr)
	}
	return traces, nil
}

// Sessions returns sessions with live traces, pruning expired ones from the index.
func (s *TraceStore) Sessions(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes every trace of a session.
func (s *TraceStore) Delete(ctx context.Context, sessionID string) error {
	ids, err := s.client.ZRange(ctx, s.sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list traces: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.traceKey(id))
	}
	pipe.Del(ctx, s.sessionKey(sessionID))
	pipe.ZRem(ctx, s.indexKey(), sessionID)

	_, err = pipe.Exec(ctx)
	return err
}

// Close closes the redis client.
func (s *TraceStore) Close() error {
	return s.client.Close()
}

func decode(val string) (ports.Trace, error) {
	var tr ports.Trace
	if err := json.Unmarshal([]byte(val), &tr); err != nil {
		return ports.Trace{}, fmt.Errorf("failed to unmarshal trace: %w", err)
	}
	return tr, nil
}

var _ ports.TraceStore = (*TraceStore)(nil)
