package dsl

import (
	"iter"
	"slices"

	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/ports"
)

// OpsVec accumulates operations in program order.
//
// It is append-only: entries are never reordered, deduplicated or edited.
// The first gating error is kept and stops further appends; Ops reports it.
type OpsVec[Q, S, Op any] struct {
	enc  domain.Encoder[Q, S, Op]
	caps domain.Capabilities
	ops  []Op
	err  error
}

// New creates an empty builder for the given encoder and gate families.
func New[Q, S, Op any](enc domain.Encoder[Q, S, Op], caps domain.Capabilities) *OpsVec[Q, S, Op] {
	return &OpsVec[Q, S, Op]{enc: enc, caps: caps}
}

// For creates an empty builder bound to a layer.
func For[Q, S, Op any, B ports.Measured[S], Req, Resp any](l ports.Layer[Q, S, Op, B, Req, Resp]) *OpsVec[Q, S, Op] {
	return New(l.Encoder(), l.Capabilities())
}

// FromSlice creates a builder that starts with ops. The builder takes
// ownership of the slice.
func FromSlice[Q, S, Op any](enc domain.Encoder[Q, S, Op], caps domain.Capabilities, ops []Op) *OpsVec[Q, S, Op] {
	return &OpsVec[Q, S, Op]{enc: enc, caps: caps, ops: ops}
}

// Capabilities returns the gate families the builder accepts.
func (v *OpsVec[Q, S, Op]) Capabilities() domain.Capabilities {
	return v.caps
}

func (v *OpsVec[Q, S, Op]) push(op Op) *OpsVec[Q, S, Op] {
	if v.err == nil {
		v.ops = append(v.ops, op)
	}
	return v
}

// gated reports whether code may be appended, recording the error if not.
func (v *OpsVec[Q, S, Op]) gated(code domain.Opcode) bool {
	if v.err != nil {
		return false
	}
	if err := domain.CheckSupported(v.caps, code); err != nil {
		v.err = err
		return false
	}
	return true
}

func (v *OpsVec[Q, S, Op]) gate(code domain.Opcode, q Q) *OpsVec[Q, S, Op] {
	if !v.gated(code) {
		return v
	}
	return v.push(v.enc.Gate(code, q))
}

// Append adds pre-built operations, such as backend extensions. No gating
// is applied.
func (v *OpsVec[Q, S, Op]) Append(ops ...Op) *OpsVec[Q, S, Op] {
	if v.err == nil {
		v.ops = append(v.ops, ops...)
	}
	return v
}

// Initialize appends a reset of every qubit to |0>.
func (v *OpsVec[Q, S, Op]) Initialize() *OpsVec[Q, S, Op] {
	return v.push(v.enc.Initialize())
}

// Measure appends a measurement of q into slot s.
func (v *OpsVec[Q, S, Op]) Measure(q Q, s S) *OpsVec[Q, S, Op] {
	return v.push(v.enc.Measure(q, s))
}

// X appends a Pauli-X gate on q.
func (v *OpsVec[Q, S, Op]) X(q Q) *OpsVec[Q, S, Op] { return v.gate(domain.OpX, q) }
// Y appends a Pauli-Y gate on q.
func (v *OpsVec[Q, S, Op]) Y(q Q) *OpsVec[Q, S, Op] { return v.gate(domain.OpY, q) }
// Z appends a Pauli-Z gate on q.
func (v *OpsVec[Q, S, Op]) Z(q Q) *OpsVec[Q, S, Op] { return v.gate(domain.OpZ, q) }
// H appends a Hadamard gate on q.
func (v *OpsVec[Q, S, Op]) H(q Q) *OpsVec[Q, S, Op] { return v.gate(domain.OpH, q) }
// S appends an S gate on q.
func (v *OpsVec[Q, S, Op]) S(q Q) *OpsVec[Q, S, Op] { return v.gate(domain.OpS, q) }
// Sdg appends an S-dagger gate on q.
func (v *OpsVec[Q, S, Op]) Sdg(q Q) *OpsVec[Q, S, Op] { return v.gate(domain.OpSdg, q) }
// T appends a T gate on q.
func (v *OpsVec[Q, S, Op]) T(q Q) *OpsVec[Q, S, Op] { return v.gate(domain.OpT, q) }
// Tdg appends a T-dagger gate on q.
func (v *OpsVec[Q, S, Op]) Tdg(q Q) *OpsVec[Q, S, Op] { return v.gate(domain.OpTdg, q) }

// CX appends a controlled-NOT with control c and target t.
func (v *OpsVec[Q, S, Op]) CX(c, t Q) *OpsVec[Q, S, Op] {
	if !v.gated(domain.OpCX) {
		return v
	}
	return v.push(v.enc.Gate2(domain.OpCX, c, t))
}

// Clear drops every operation and any recorded error, keeping the capacity.
func (v *OpsVec[Q, S, Op]) Clear() {
	clear(v.ops)
	v.ops = v.ops[:0]
	v.err = nil
}

// Len returns the number of operations appended.
func (v *OpsVec[Q, S, Op]) Len() int {
	return len(v.ops)
}

// At returns the i-th operation.
func (v *OpsVec[Q, S, Op]) At(i int) Op {
	return v.ops[i]
}

// All iterates the operations in program order. The sequence can be
// ranged over any number of times.
func (v *OpsVec[Q, S, Op]) All() iter.Seq[Op] {
	return slices.Values(v.ops)
}

// Slice returns the operations as a contiguous view for Send. The view is
// read-only: callers must not modify its elements. It is clipped so that
// appending to it never writes into the builder.
func (v *OpsVec[Q, S, Op]) Slice() []Op {
	return slices.Clip(v.ops)
}

// Into returns the operations and leaves the builder empty.
func (v *OpsVec[Q, S, Op]) Into() []Op {
	ops := v.ops
	v.ops = nil
	return ops
}

// Err returns the first gating error, if any.
func (v *OpsVec[Q, S, Op]) Err() error {
	return v.err
}

// Ops returns the batch for dispatch, or the gating error that invalidated it.
func (v *OpsVec[Q, S, Op]) Ops() ([]Op, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.Slice(), nil
}
