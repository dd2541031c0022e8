package sim_test

import (
	"testing"

	"github.com/aretw0/lay/pkg/adapters/sim"
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/dsl"
	"github.com/aretw0/lay/pkg/measured"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type simLayer = ports.Layer[int, int, sim.Op, *measured.Bits, error, error]

func TestBackend_Contract(t *testing.T) {
	ports.RunLayerContract(t, func() simLayer { return sim.New(2) }, ports.ContractConfig[int, int]{
		Qubit:     1,
		Slot:      3,
		Simulates: true,
	})
}

func TestBackend_FlipAndRecord(t *testing.T) {
	b := sim.New(1)
	v := dsl.New(b.Encoder(), b.Capabilities()).
		Initialize().
		X(0).
		Measure(0, 0)

	ops, err := v.Ops()
	require.NoError(t, err)

	buf := b.MakeBuffer()
	require.NoError(t, b.SendReceive(ops, buf))
	assert.True(t, buf.Get(0))
}

func TestBackend_CX(t *testing.T) {
	b := sim.New(3)
	v := dsl.New(b.Encoder(), b.Capabilities()).
		Initialize().
		X(0).
		CX(0, 1).
		CX(2, 0).
		Measure(0, 0).
		Measure(1, 1).
		Measure(2, 2)

	ops, err := v.Ops()
	require.NoError(t, err)

	buf := b.MakeBuffer()
	require.NoError(t, b.SendReceive(ops, buf))
	assert.Equal(t, "110", measured.Read[int](buf).Bits(0, 3))
	assert.Equal(t, []bool{true, true, false}, b.State())
}

func TestBackend_PhaseGatesKeepBasisState(t *testing.T) {
	b := sim.New(1)
	v := dsl.New(b.Encoder(), b.Capabilities()).
		Initialize().X(0).Z(0).S(0).Sdg(0).T(0).Tdg(0).Measure(0, 0)

	ops, err := v.Ops()
	require.NoError(t, err)
	buf := b.MakeBuffer()
	require.NoError(t, b.SendReceive(ops, buf))
	assert.True(t, buf.Get(0))
}

func TestBackend_HadamardIsNotSupported(t *testing.T) {
	b := sim.New(1)
	assert.False(t, b.Capabilities().Has(domain.HGate))

	v := dsl.New(b.Encoder(), b.Capabilities()).Initialize().H(0)
	_, err := v.Ops()
	assert.ErrorIs(t, err, domain.ErrUnsupportedGate)
	assert.Zero(t, b.Batches(), "nothing reaches the backend")

	// a hand-built batch is still refused by the backend itself
	err = b.Send([]sim.Op{domain.H[int, int](0)})
	assert.ErrorIs(t, err, domain.ErrUnsupportedGate)
}

func TestBackend_WithCapabilities(t *testing.T) {
	b := sim.New(2, sim.WithCapabilities(domain.PauliGate|domain.HGate))
	assert.Equal(t, domain.PauliGate, b.Capabilities(), "families the simulator cannot run are dropped")
}

func TestBackend_FlipExtension(t *testing.T) {
	b := sim.New(4)
	v := dsl.New(b.Encoder(), b.Capabilities()).
		Initialize().
		Append(sim.Flip(1, 3)).
		Measure(0, 0).Measure(1, 1).Measure(2, 2).Measure(3, 3)

	ops, err := v.Ops()
	require.NoError(t, err)
	buf := b.MakeBuffer()
	require.NoError(t, b.SendReceive(ops, buf))
	assert.Equal(t, uint8(0b1010), measured.RangeU8[int](buf, 0, 4))
}

func TestBackend_Errors(t *testing.T) {
	t.Run("qubit out of range", func(t *testing.T) {
		b := sim.New(1)
		err := b.Send([]sim.Op{domain.X[int, int](1)})
		assert.ErrorIs(t, err, sim.ErrAddress)
	})

	t.Run("negative slot", func(t *testing.T) {
		b := sim.New(1)
		err := b.Send([]sim.Op{domain.Measure[int, int](0, -1)})
		assert.ErrorIs(t, err, sim.ErrAddress)
	})

	t.Run("unknown extension", func(t *testing.T) {
		b := sim.New(1)
		err := b.Send([]sim.Op{domain.MustExtension[int, int](sim.OpFlip+1, nil)})
		assert.ErrorIs(t, err, sim.ErrUnsupportedOp)
	})

	t.Run("failure is reported by receive and reads as zero", func(t *testing.T) {
		b := sim.New(2)
		buf := b.MakeBuffer()
		err := b.SendReceive([]sim.Op{
			domain.Initialize[int, int](),
			domain.X[int, int](0),
			domain.Measure[int, int](0, 0),
			domain.X[int, int](7),
		}, buf)
		require.ErrorIs(t, err, sim.ErrAddress)

		out := measured.Fallible[int](buf, err)
		assert.False(t, out.Get(0))
		assert.Zero(t, measured.RangeU64[int](out, 0, 64))
		// the raw buffer still holds what was recorded before the failure
		assert.True(t, buf.Get(0))
	})
}
