package transform

import "github.com/aretw0/lay/pkg/ports"

// Hooks replace the dispatch calls of a wrapped layer. Each hook receives the
// inner layer and the original arguments, and its return value is the whole
// result of the call: the wrapper does nothing else. A nil hook forwards the
// call to the inner layer unchanged.
type Hooks[Q, S, Op any, B ports.Measured[S], Req, Resp any] struct {
	Send        func(inner ports.Layer[Q, S, Op, B, Req, Resp], ops []Op) Req
	Receive     func(inner ports.Layer[Q, S, Op, B, Req, Resp], buf B) Resp
	SendReceive func(inner ports.Layer[Q, S, Op, B, Req, Resp], ops []Op, buf B) Resp
}

func (h Hooks[Q, S, Op, B, Req, Resp]) send(inner ports.Layer[Q, S, Op, B, Req, Resp], ops []Op) Req {
	if h.Send == nil {
		return inner.Send(ops)
	}
	return h.Send(inner, ops)
}

func (h Hooks[Q, S, Op, B, Req, Resp]) receive(inner ports.Layer[Q, S, Op, B, Req, Resp], buf B) Resp {
	if h.Receive == nil {
		return inner.Receive(buf)
	}
	return h.Receive(inner, buf)
}

func (h Hooks[Q, S, Op, B, Req, Resp]) sendReceive(inner ports.Layer[Q, S, Op, B, Req, Resp], ops []Op, buf B) Resp {
	if h.SendReceive == nil {
		return inner.SendReceive(ops, buf)
	}
	return h.SendReceive(inner, ops, buf)
}
