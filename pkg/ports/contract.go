package ports

import (
	"testing"

	"github.com/aretw0/lay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractConfig tells RunLayerContract which addresses to exercise.
type ContractConfig[Q, S any] struct {
	// Qubit and Slot must be valid addresses for the layer under test.
	Qubit Q
	Slot  S
	// Simulates is set for layers whose buffers reflect the operations sent,
	// as opposed to drivers that only forward them.
	Simulates bool
}

// RunLayerContract runs a suite of tests to verify that a Layer implementation
// adheres to the dispatch contract. newLayer must return a fresh layer on every call.
func RunLayerContract[Q, S, Op any, B Measured[S], Req, Resp any](
	t *testing.T,
	newLayer func() Layer[Q, S, Op, B, Req, Resp],
	cfg ContractConfig[Q, S],
) {
	t.Run("Encoder is complete", func(t *testing.T) {
		enc := newLayer().Encoder()
		assert.NotNil(t, enc.Initialize, "Initialize constructor")
		assert.NotNil(t, enc.Measure, "Measure constructor")
		assert.NotNil(t, enc.Gate, "Gate constructor")
		assert.NotNil(t, enc.Gate2, "Gate2 constructor")
	})

	t.Run("Capabilities are stable", func(t *testing.T) {
		l := newLayer()
		assert.Equal(t, l.Capabilities(), l.Capabilities())
	})

	t.Run("Initialize then measure reads false", func(t *testing.T) {
		l := newLayer()
		enc := l.Encoder()
		buf := l.MakeBuffer()

		l.SendReceive([]Op{enc.Initialize(), enc.Measure(cfg.Qubit, cfg.Slot)}, buf)
		assert.False(t, buf.Get(cfg.Slot), "freshly initialized qubit must measure false")
	})

	t.Run("Empty batch", func(t *testing.T) {
		l := newLayer()
		buf := l.MakeBuffer()
		require.NotPanics(t, func() {
			l.Send(nil)
			l.Receive(buf)
		})
	})

	if !cfg.Simulates {
		return
	}

	flip := func(l Layer[Q, S, Op, B, Req, Resp]) []Op {
		enc := l.Encoder()
		return []Op{enc.Initialize(), enc.Gate(domain.OpX, cfg.Qubit), enc.Measure(cfg.Qubit, cfg.Slot)}
	}

	t.Run("Flip then measure reads true", func(t *testing.T) {
		l := newLayer()
		if !l.Capabilities().Has(domain.PauliGate) {
			t.Skip("layer has no Pauli gates")
		}
		buf := l.MakeBuffer()
		l.SendReceive(flip(l), buf)
		assert.True(t, buf.Get(cfg.Slot))
	})

	t.Run("SendReceive equals Send then Receive", func(t *testing.T) {
		a, b := newLayer(), newLayer()
		if !a.Capabilities().Has(domain.PauliGate) {
			t.Skip("layer has no Pauli gates")
		}
		bufA, bufB := a.MakeBuffer(), b.MakeBuffer()

		a.SendReceive(flip(a), bufA)
		b.Send(flip(b))
		b.Receive(bufB)

		assert.Equal(t, bufA.Get(cfg.Slot), bufB.Get(cfg.Slot))
	})

	t.Run("Buffers are independent", func(t *testing.T) {
		l := newLayer()
		if !l.Capabilities().Has(domain.PauliGate) {
			t.Skip("layer has no Pauli gates")
		}
		filled, untouched := l.MakeBuffer(), l.MakeBuffer()
		l.SendReceive(flip(l), filled)

		assert.True(t, filled.Get(cfg.Slot))
		assert.False(t, untouched.Get(cfg.Slot))
	})
}
