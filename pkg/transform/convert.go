package transform

import (
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/ports"
)

// Convert exposes an inner layer under different qubit and slot types.
//
// Operations are stored in the inner representation from the moment they are
// built: the encoder returned by Encoder runs every address through the
// Converter, so Send and SendReceive hand the batch to the inner layer as is.
type Convert[QO, SO, QI, SI, Op any, B ports.Measured[SI], Req, Resp any] struct {
	inner ports.Layer[QI, SI, Op, B, Req, Resp]
	conv  ports.Converter[QO, QI, SO, SI]
}

// NewConvert wraps inner with the address mapping conv.
func NewConvert[QO, SO, QI, SI, Op any, B ports.Measured[SI], Req, Resp any](
	inner ports.Layer[QI, SI, Op, B, Req, Resp],
	conv ports.Converter[QO, QI, SO, SI],
) *Convert[QO, SO, QI, SI, Op, B, Req, Resp] {
	return &Convert[QO, SO, QI, SI, Op, B, Req, Resp]{inner: inner, conv: conv}
}

// Inner returns the wrapped layer.
func (c *Convert[QO, SO, QI, SI, Op, B, Req, Resp]) Inner() ports.Layer[QI, SI, Op, B, Req, Resp] {
	return c.inner
}

func (c *Convert[QO, SO, QI, SI, Op, B, Req, Resp]) Send(ops []Op) Req {
	return c.inner.Send(ops)
}

func (c *Convert[QO, SO, QI, SI, Op, B, Req, Resp]) Receive(buf *ConvBuffer[SO, SI, B]) Resp {
	c.own(buf)
	return c.inner.Receive(buf.inner)
}

func (c *Convert[QO, SO, QI, SI, Op, B, Req, Resp]) SendReceive(ops []Op, buf *ConvBuffer[SO, SI, B]) Resp {
	c.own(buf)
	return c.inner.SendReceive(ops, buf.inner)
}

func (c *Convert[QO, SO, QI, SI, Op, B, Req, Resp]) MakeBuffer() *ConvBuffer[SO, SI, B] {
	return &ConvBuffer[SO, SI, B]{
		inner: c.inner.MakeBuffer(),
		slot:  c.conv.Slot,
		owner: c,
	}
}

// Encoder remaps addresses at construction time and delegates to the inner encoder.
func (c *Convert[QO, SO, QI, SI, Op, B, Req, Resp]) Encoder() domain.Encoder[QO, SO, Op] {
	enc := c.inner.Encoder()
	conv := c.conv
	return domain.Encoder[QO, SO, Op]{
		Initialize: enc.Initialize,
		Measure: func(q QO, s SO) Op {
			return enc.Measure(conv.Qubit(q), conv.Slot(s))
		},
		Gate: func(code domain.Opcode, q QO) Op {
			return enc.Gate(code, conv.Qubit(q))
		},
		Gate2: func(code domain.Opcode, ctl, tgt QO) Op {
			return enc.Gate2(code, conv.Qubit(ctl), conv.Qubit(tgt))
		},
	}
}

func (c *Convert[QO, SO, QI, SI, Op, B, Req, Resp]) Capabilities() domain.Capabilities {
	return c.inner.Capabilities()
}

func (c *Convert[QO, SO, QI, SI, Op, B, Req, Resp]) own(buf *ConvBuffer[SO, SI, B]) {
	if buf.owner != c {
		panic("transform: buffer was made by a different layer")
	}
}

// ConvBuffer is the buffer of a Convert layer. Reads by outer slot are
// remapped onto the inner buffer.
type ConvBuffer[SO, SI any, B ports.Measured[SI]] struct {
	inner B
	slot  func(SO) SI
	owner any
}

// Get reads the inner slot that s maps to.
func (b *ConvBuffer[SO, SI, B]) Get(s SO) bool {
	return b.inner.Get(b.slot(s))
}

// Inner returns the wrapped buffer.
func (b *ConvBuffer[SO, SI, B]) Inner() B {
	return b.inner
}
