package transform

import (
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/ports"
)

// Inspect routes every dispatch call of an inner layer through Hooks while
// keeping the inner operation, buffer and result types. Use it to observe or
// redirect calls without touching their encoding.
type Inspect[Q, S, Op any, B ports.Measured[S], Req, Resp any] struct {
	inner ports.Layer[Q, S, Op, B, Req, Resp]
	hooks Hooks[Q, S, Op, B, Req, Resp]
}

// NewInspect wraps inner with hooks.
func NewInspect[Q, S, Op any, B ports.Measured[S], Req, Resp any](
	inner ports.Layer[Q, S, Op, B, Req, Resp],
	hooks Hooks[Q, S, Op, B, Req, Resp],
) *Inspect[Q, S, Op, B, Req, Resp] {
	return &Inspect[Q, S, Op, B, Req, Resp]{inner: inner, hooks: hooks}
}

// Inner returns the wrapped layer.
func (i *Inspect[Q, S, Op, B, Req, Resp]) Inner() ports.Layer[Q, S, Op, B, Req, Resp] {
	return i.inner
}

func (i *Inspect[Q, S, Op, B, Req, Resp]) Send(ops []Op) Req {
	return i.hooks.send(i.inner, ops)
}

func (i *Inspect[Q, S, Op, B, Req, Resp]) Receive(buf B) Resp {
	return i.hooks.receive(i.inner, buf)
}

func (i *Inspect[Q, S, Op, B, Req, Resp]) SendReceive(ops []Op, buf B) Resp {
	return i.hooks.sendReceive(i.inner, ops, buf)
}

func (i *Inspect[Q, S, Op, B, Req, Resp]) MakeBuffer() B {
	return i.inner.MakeBuffer()
}

func (i *Inspect[Q, S, Op, B, Req, Resp]) Encoder() domain.Encoder[Q, S, Op] {
	return i.inner.Encoder()
}

func (i *Inspect[Q, S, Op, B, Req, Resp]) Capabilities() domain.Capabilities {
	return i.inner.Capabilities()
}
