package transform

import "github.com/aretw0/lay/pkg/ports"

// Middleware wraps a layer to add behavior without changing its types.
type Middleware[Q, S, Op any, B ports.Measured[S], Req, Resp any] func(ports.Layer[Q, S, Op, B, Req, Resp]) ports.Layer[Q, S, Op, B, Req, Resp]

// Chain applies middlewares to inner. The first middleware ends up outermost,
// so it sees each call first.
func Chain[Q, S, Op any, B ports.Measured[S], Req, Resp any](
	inner ports.Layer[Q, S, Op, B, Req, Resp],
	mws ...Middleware[Q, S, Op, B, Req, Resp],
) ports.Layer[Q, S, Op, B, Req, Resp] {
	l := inner
	for i := len(mws) - 1; i >= 0; i-- {
		l = mws[i](l)
	}
	return l
}

// InspectWith returns a middleware that wraps a layer in an Inspect with hooks.
func InspectWith[Q, S, Op any, B ports.Measured[S], Req, Resp any](hooks Hooks[Q, S, Op, B, Req, Resp]) Middleware[Q, S, Op, B, Req, Resp] {
	return func(inner ports.Layer[Q, S, Op, B, Req, Resp]) ports.Layer[Q, S, Op, B, Req, Resp] {
		return NewInspect(inner, hooks)
	}
}
