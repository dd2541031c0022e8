package transform

import (
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/ports"
)

// Tagged is the operation type of an Inject layer. It holds exactly one inner
// operation and adds nothing else.
type Tagged[Op any] struct {
	op Op
}

// Tag wraps an inner operation.
func Tag[Op any](op Op) Tagged[Op] {
	return Tagged[Op]{op: op}
}

// Unwrap returns the inner operation.
func (t Tagged[Op]) Unwrap() Op {
	return t.op
}

// Untag copies the inner operations of ops into a fresh slice.
func Untag[Op any](ops []Tagged[Op]) []Op {
	if ops == nil {
		return nil
	}
	out := make([]Op, len(ops))
	for i, t := range ops {
		out[i] = t.op
	}
	return out
}

// Inject routes every dispatch call of an inner layer through Hooks and
// exposes its operations under the distinct type Tagged[Op]. Batches are
// unwrapped into the inner representation before the hook runs.
type Inject[Q, S, Op any, B ports.Measured[S], Req, Resp any] struct {
	inner ports.Layer[Q, S, Op, B, Req, Resp]
	hooks Hooks[Q, S, Op, B, Req, Resp]
}

// NewInject wraps inner with hooks.
func NewInject[Q, S, Op any, B ports.Measured[S], Req, Resp any](
	inner ports.Layer[Q, S, Op, B, Req, Resp],
	hooks Hooks[Q, S, Op, B, Req, Resp],
) *Inject[Q, S, Op, B, Req, Resp] {
	return &Inject[Q, S, Op, B, Req, Resp]{inner: inner, hooks: hooks}
}

// Inner returns the wrapped layer.
func (i *Inject[Q, S, Op, B, Req, Resp]) Inner() ports.Layer[Q, S, Op, B, Req, Resp] {
	return i.inner
}

func (i *Inject[Q, S, Op, B, Req, Resp]) Send(ops []Tagged[Op]) Req {
	return i.hooks.send(i.inner, Untag(ops))
}

func (i *Inject[Q, S, Op, B, Req, Resp]) Receive(buf B) Resp {
	return i.hooks.receive(i.inner, buf)
}

func (i *Inject[Q, S, Op, B, Req, Resp]) SendReceive(ops []Tagged[Op], buf B) Resp {
	return i.hooks.sendReceive(i.inner, Untag(ops), buf)
}

func (i *Inject[Q, S, Op, B, Req, Resp]) MakeBuffer() B {
	return i.inner.MakeBuffer()
}

// Encoder builds inner operations and tags them.
func (i *Inject[Q, S, Op, B, Req, Resp]) Encoder() domain.Encoder[Q, S, Tagged[Op]] {
	enc := i.inner.Encoder()
	return domain.Encoder[Q, S, Tagged[Op]]{
		Initialize: func() Tagged[Op] {
			return Tag(enc.Initialize())
		},
		Measure: func(q Q, s S) Tagged[Op] {
			return Tag(enc.Measure(q, s))
		},
		Gate: func(code domain.Opcode, q Q) Tagged[Op] {
			return Tag(enc.Gate(code, q))
		},
		Gate2: func(code domain.Opcode, c, t Q) Tagged[Op] {
			return Tag(enc.Gate2(code, c, t))
		},
	}
}

func (i *Inject[Q, S, Op, B, Req, Resp]) Capabilities() domain.Capabilities {
	return i.inner.Capabilities()
}
