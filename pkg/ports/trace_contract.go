package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/lay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTraceStoreContract runs a suite of tests to verify that a TraceStore
// implementation adheres to the defined interface contract.
func RunTraceStoreContract(t *testing.T, store TraceStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	trace := func(session string, seq int) Trace {
		return Trace{
			ID:        fmt.Sprintf("%s-%d", session, seq),
			SessionID: session,
			Seq:       seq,
			Call:      "send",
			Ops:       []string{"initialize()", "x(0)", "measure(0, 0)"},
			Time:      time.Date(2024, 1, 1, 12, 0, seq, 0, time.UTC),
		}
	}

	t.Run("Append and Get", func(t *testing.T) {
		want := trace(sessionID, 1)
		require.NoError(t, store.Append(ctx, want))

		got, err := store.Get(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.SessionID, got.SessionID)
		assert.Equal(t, want.Ops, got.Ops)
		assert.True(t, want.Time.Equal(got.Time), "time must round-trip")
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "missing-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrTraceNotFound)
	})

	t.Run("List is ordered by Seq", func(t *testing.T) {
		id := sessionID + "-ordered"
		defer func() { _ = store.Delete(ctx, id) }()

		for _, seq := range []int{3, 1, 2} {
			require.NoError(t, store.Append(ctx, trace(id, seq)))
		}

		traces, err := store.List(ctx, id)
		require.NoError(t, err)
		require.Len(t, traces, 3)
		for i, tr := range traces {
			assert.Equal(t, i+1, tr.Seq)
		}
	})

	t.Run("List Unknown Session", func(t *testing.T) {
		traces, err := store.List(ctx, "unknown-"+sessionID)
		require.NoError(t, err)
		assert.Empty(t, traces)
	})

	t.Run("Sessions and Delete", func(t *testing.T) {
		id1, id2 := sessionID+"-a", sessionID+"-b"
		require.NoError(t, store.Append(ctx, trace(id1, 1)))
		require.NoError(t, store.Append(ctx, trace(id2, 1)))

		sessions, err := store.Sessions(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)

		require.NoError(t, store.Delete(ctx, id1))
		traces, err := store.List(ctx, id1)
		require.NoError(t, err)
		assert.Empty(t, traces)

		_, err = store.Get(ctx, trace(id1, 1).ID)
		assert.ErrorIs(t, err, domain.ErrTraceNotFound, "Get after Delete should return ErrTraceNotFound")

		sessions, err = store.Sessions(ctx)
		require.NoError(t, err)
		assert.NotContains(t, sessions, id1)

		require.NoError(t, store.Delete(ctx, id2))
	})
}
