package lay_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/lay"
	"github.com/aretw0/lay/internal/logging"
	"github.com/aretw0/lay/pkg/adapters/echo"
	"github.com/aretw0/lay/pkg/adapters/memory"
	"github.com/aretw0/lay/pkg/adapters/sim"
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/dsl"
	"github.com/aretw0/lay/pkg/measured"
	"github.com/aretw0/lay/pkg/observability"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/program"
	"github.com/aretw0/lay/pkg/recorder"
	"github.com/aretw0/lay/pkg/transform"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type simLayer = ports.Layer[int, int, sim.Op, *measured.Bits, error, error]

func TestSession_FlipOneQubit(t *testing.T) {
	s := lay.NewSession(sim.New(1))

	buf, err := lay.Run(s, func(v *dsl.OpsVec[int, int, sim.Op]) {
		v.Initialize().X(0).Measure(0, 0)
	})
	require.NoError(t, err)
	assert.True(t, buf.Get(0))
	assert.Equal(t, 1, s.Runs())
}

func TestSession_GridAddressesReachBackendLinearly(t *testing.T) {
	var seen [][]sim.Op
	backend := sim.New(8)
	observed := transform.NewInspect(simLayer(backend), transform.Hooks[int, int, sim.Op, *measured.Bits, error, error]{
		SendReceive: func(inner simLayer, ops []sim.Op, buf *measured.Bits) error {
			seen = append(seen, ops)
			return inner.SendReceive(ops, buf)
		},
	})
	grid := transform.NewSerialization[sim.Op, *measured.Bits, error, error](observed, 4)
	s := lay.NewSession(grid)

	buf, err := lay.Run(s, func(v *dsl.OpsVec[transform.Point, transform.Point, sim.Op]) {
		v.X(transform.Point{X: 1, Y: 0}).Measure(transform.Point{X: 1, Y: 0}, transform.Point{X: 0, Y: 0})
	})
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, []sim.Op{domain.X[int, int](1), domain.Measure[int, int](1, 0)}, seen[0])
	assert.True(t, buf.Get(transform.Point{}))
}

func TestSession_RejectsUnsupportedGateBeforeDispatch(t *testing.T) {
	var logs bytes.Buffer
	backend := sim.New(1)
	s := lay.NewSession(backend, lay.WithLogger(logging.NewWriter(&logs, slog.LevelDebug, logging.FormatText)))

	_, err := lay.Run(s, func(v *dsl.OpsVec[int, int, sim.Op]) {
		v.Initialize().H(0).Measure(0, 0)
	})
	require.ErrorIs(t, err, domain.ErrUnsupportedGate)
	assert.Zero(t, backend.Batches())
	assert.Zero(t, s.Runs())
	assert.Contains(t, logs.String(), "batch rejected before dispatch")
}

func TestSession_BackendFailure(t *testing.T) {
	s := lay.NewSession(sim.New(1))

	buf, err := lay.Run(s, func(v *dsl.OpsVec[int, int, sim.Op]) {
		v.X(0).Measure(0, 0).X(7)
	})
	require.ErrorIs(t, err, sim.ErrAddress)
	assert.False(t, measured.Fallible[int](buf, err).Get(0))
	assert.True(t, buf.Get(0), "results recorded before the failure stay in the buffer")
}

func TestSession_MetricsAndTraces(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := memory.NewTraceStore()
	rec := recorder.New(store, recorder.WithSessionID("run-1"))

	s := lay.NewSession(sim.New(2),
		lay.WithName("sim"),
		lay.WithMetrics(observability.NewMetrics(reg)),
		lay.WithRecorder(rec),
	)

	for range 2 {
		_, err := lay.Run(s, func(v *dsl.OpsVec[int, int, sim.Op]) {
			v.Initialize().X(1).Measure(1, 0)
		})
		require.NoError(t, err)
	}

	expected := `
# HELP lay_calls_total Total number of dispatch calls
# TYPE lay_calls_total counter
lay_calls_total{call="send_receive",layer="sim"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "lay_calls_total"))

	traces, err := store.List(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, traces, 2)
	assert.Equal(t, "1", traces[1].Bits)
}

func TestRunProgram_Linear(t *testing.T) {
	p, err := program.Load("testdata/bell.yaml")
	require.NoError(t, err)

	rec := recorder.New(memory.NewTraceStore(), recorder.WithSessionID("bell"))
	res, err := lay.RunProgram(p, simLayer(sim.New(p.Width())), lay.WithRecorder(rec))
	require.NoError(t, err)

	assert.Equal(t, lay.Result{
		Program: "bell",
		Session: "bell",
		Ops:     []string{"initialize()", "x(0)", "cx(0, 1)", "measure(0, 0)", "measure(1, 1)"},
		Bits:    "11",
	}, res)
}

func TestRunProgram_Grid(t *testing.T) {
	p, err := program.ParseYAML([]byte("name: g\ngrid: 4\nops: [init, {x: [1, 0]}, {measure: {qubit: [1, 0], slot: 2}}]"))
	require.NoError(t, err)

	res, err := lay.RunProgram(p, simLayer(sim.New(p.Width())))
	require.NoError(t, err)
	assert.Equal(t, []string{"initialize()", "x(1)", "measure(1, 2)"}, res.Ops)
	assert.Equal(t, "001", res.Bits)
}

func TestRunProgram_Rejected(t *testing.T) {
	p, err := program.ParseYAML([]byte("ops: [init, {h: 0}]"))
	require.NoError(t, err)

	backend := sim.New(1)
	_, err = lay.RunProgram(p, simLayer(backend))
	assert.ErrorIs(t, err, domain.ErrUnsupportedGate)
	assert.Zero(t, backend.Batches())
}

func TestRunProgram_BackendFailureZeroesBits(t *testing.T) {
	p, err := program.ParseYAML([]byte("ops: [init, {x: 0}, {measure: 0}, {x: 3}]"))
	require.NoError(t, err)

	res, err := lay.RunProgram(p, simLayer(sim.New(1)))
	require.ErrorIs(t, err, sim.ErrAddress)
	assert.Equal(t, "0", res.Bits)
	assert.Contains(t, res.Error, "qubit 3")
}

func TestRunProgram_Echo(t *testing.T) {
	var out bytes.Buffer
	p, err := program.ParseYAML([]byte("ops: [init, {h: 0}, {measure: 0}]"))
	require.NoError(t, err)

	res, err := lay.RunProgram(p, ports.Layer[int, int, lay.Op, *echo.Buffer[int], error, error](echo.New[int, int](&out)))
	require.NoError(t, err)
	assert.Equal(t, "0", res.Bits)
	assert.Equal(t, "initialize()\nh(0)\nmeasure(0, 0)\nreceive()\n", out.String())
}

func TestRunProgram_Examples(t *testing.T) {
	tests := []struct {
		file string
		bits string
		err  error
	}{
		{"examples/programs/ghz.json", "111", nil},
		{"examples/programs/grid.yaml", "111", nil},
		{"examples/programs/bell.yaml", "", domain.ErrUnsupportedGate},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			p, err := program.Load(tt.file)
			require.NoError(t, err)

			res, err := lay.RunProgram(p, simLayer(sim.New(p.Width())))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bits, res.Bits)
		})
	}
}
