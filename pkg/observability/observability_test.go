package observability_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/lay/internal/logging"
	"github.com/aretw0/lay/pkg/adapters/sim"
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/measured"
	"github.com/aretw0/lay/pkg/observability"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/transform"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type layer = ports.Layer[int, int, sim.Op, *measured.Bits, error, error]

func instrument(t *testing.T, inner layer) (layer, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	return transform.Chain(inner, observability.Instrument[int, int, sim.Op, *measured.Bits, error, error](m, "sim")), reg
}

func TestInstrument_CountsCallsAndOps(t *testing.T) {
	l, reg := instrument(t, sim.New(2))
	buf := l.MakeBuffer()

	ops := []sim.Op{domain.Initialize[int, int](), domain.X[int, int](0), domain.Measure[int, int](0, 0)}
	require.NoError(t, l.SendReceive(ops, buf))
	require.NoError(t, l.Send(ops[:1]))
	require.NoError(t, l.Receive(buf))

	expected := `
# HELP lay_calls_total Total number of dispatch calls
# TYPE lay_calls_total counter
lay_calls_total{call="receive",layer="sim"} 1
lay_calls_total{call="send",layer="sim"} 1
lay_calls_total{call="send_receive",layer="sim"} 1
# HELP lay_ops_total Total number of operations sent
# TYPE lay_ops_total counter
lay_ops_total{layer="sim"} 4
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "lay_calls_total", "lay_ops_total")
	assert.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "lay_call_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestInstrument_CountsFailures(t *testing.T) {
	l, reg := instrument(t, sim.New(1))

	err := l.Send([]sim.Op{domain.X[int, int](5)})
	require.ErrorIs(t, err, sim.ErrAddress)

	expected := `
# HELP lay_call_failures_total Dispatch calls whose result was a non-nil error
# TYPE lay_call_failures_total counter
lay_call_failures_total{call="send",layer="sim"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "lay_call_failures_total"))
}

func TestInstrument_KeepsCapabilities(t *testing.T) {
	inner := sim.New(1, sim.WithCapabilities(domain.PauliGate))
	l, _ := instrument(t, inner)
	assert.Equal(t, domain.PauliGate, l.Capabilities())
}

func TestLogged(t *testing.T) {
	var out bytes.Buffer
	logger := logging.NewWriter(&out, slog.LevelDebug, logging.FormatText)
	l := transform.Chain(layer(sim.New(1)), observability.Logged[int, int, sim.Op, *measured.Bits, error, error](logger, "sim"))

	require.NoError(t, l.Send([]sim.Op{domain.X[int, int](0)}))
	assert.Contains(t, out.String(), "msg=dispatch")
	assert.Contains(t, out.String(), "call=send")
	assert.Contains(t, out.String(), "ops=1")
	assert.Contains(t, out.String(), `first=x(0)`)

	out.Reset()
	require.Error(t, l.Send([]sim.Op{domain.X[int, int](3)}))
	assert.Contains(t, out.String(), "level=WARN")
	assert.Contains(t, out.String(), "msg=\"dispatch failed\"")
	assert.Contains(t, out.String(), "err=")
}

func TestFailed(t *testing.T) {
	assert.False(t, observability.Failed(nil))
	assert.False(t, observability.Failed(error(nil)))
	assert.False(t, observability.Failed(42))
	assert.True(t, observability.Failed(errors.New("x")))
}

