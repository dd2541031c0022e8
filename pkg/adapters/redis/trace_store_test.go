package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/lay/pkg/adapters/redis"
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.TraceStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisTraceStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunTraceStoreContract(t, store)
}

func TestRedisTraceStore_Prefix(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, ports.Trace{ID: "abc", SessionID: "s1", Seq: 1}))

	assert.True(t, mr.Exists("test:trace:abc"))
	assert.True(t, mr.Exists("test:session:s1"))
	assert.True(t, mr.Exists("test:index"))
}

func TestRedisTraceStore_TTL_Expiration(t *testing.T) {
	store, mr := newStore(t, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, ports.Trace{ID: "t1", SessionID: "session-ttl", Seq: 1, Call: "send"}))

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, "session-ttl")

	mr.FastForward(2 * time.Second)

	_, err = store.Get(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrTraceNotFound)

	traces, err := store.List(ctx, "session-ttl")
	require.NoError(t, err)
	assert.Empty(t, traces)
}

func TestRedisTraceStore_ListSkipsExpiredTraces(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, ports.Trace{ID: "a", SessionID: "s", Seq: 1}))
	require.NoError(t, store.Append(ctx, ports.Trace{ID: "b", SessionID: "s", Seq: 2}))
	mr.Del("lay:trace:a")

	traces, err := store.List(ctx, "s")
	require.NoError(t, err)
	require.Len(t, traces, 1)
	assert.Equal(t, "b", traces[0].ID)
}
