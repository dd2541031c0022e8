package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/transform"
)

// Logged returns a middleware that writes a debug record for each call and a
// warning when the result is an error.
func Logged[Q, S, Op any, B ports.Measured[S], Req, Resp any](logger *slog.Logger, layer string) transform.Middleware[Q, S, Op, B, Req, Resp] {
	record := func(call string, ops []Op, start time.Time, result any) {
		attrs := []any{"layer", layer, "call", call, "ops", len(ops), "duration", time.Since(start)}
		if Failed(result) {
			logger.Warn("dispatch failed", append(attrs, "error", result)...)
			return
		}
		if len(ops) > 0 && logger.Enabled(context.Background(), slog.LevelDebug) {
			attrs = append(attrs, "first", fmt.Sprint(ops[0]))
		}
		logger.Debug("dispatch", attrs...)
	}

	return transform.InspectWith(transform.Hooks[Q, S, Op, B, Req, Resp]{
		Send: func(inner ports.Layer[Q, S, Op, B, Req, Resp], ops []Op) Req {
			start := time.Now()
			r := inner.Send(ops)
			record(CallSend, ops, start, r)
			return r
		},
		Receive: func(inner ports.Layer[Q, S, Op, B, Req, Resp], buf B) Resp {
			start := time.Now()
			r := inner.Receive(buf)
			record(CallReceive, nil, start, r)
			return r
		},
		SendReceive: func(inner ports.Layer[Q, S, Op, B, Req, Resp], ops []Op, buf B) Resp {
			start := time.Now()
			r := inner.SendReceive(ops, buf)
			record(CallSendReceive, ops, start, r)
			return r
		},
	})
}
