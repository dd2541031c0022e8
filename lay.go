package lay

import (
	"log/slog"

	"github.com/aretw0/lay/internal/logging"
	"github.com/aretw0/lay/pkg/dsl"
	"github.com/aretw0/lay/pkg/observability"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/recorder"
	"github.com/aretw0/lay/pkg/transform"
)

// Session is the high-level entry point for dispatching batches to a layer.
// It wraps the layer with the configured middlewares and builds each batch
// with a capability-gated OpsVec before anything is sent.
//
// Like the layers it wraps, a Session is used by one goroutine at a time.
type Session[Q, S, Op any, B ports.Measured[S], Req, Resp any] struct {
	layer  ports.Layer[Q, S, Op, B, Req, Resp]
	logger *slog.Logger
	name   string
	runs   int
}

type config struct {
	logger   *slog.Logger
	name     string
	metrics  *observability.Metrics
	recorder *recorder.Recorder
}

// Option defines a functional option for configuring a Session.
type Option func(*config)

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithName labels the session's logs and metrics (default: "default").
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithMetrics records Prometheus metrics for every call.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithRecorder stores a trace for every call.
func WithRecorder(r *recorder.Recorder) Option {
	return func(c *config) {
		c.recorder = r
	}
}

func resolve(opts []Option) config {
	cfg := config{name: "default"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	return cfg
}

// NewSession wraps l. Metrics, when enabled, see each call first, then the
// recorder, then the call logger.
func NewSession[Q, S, Op any, B ports.Measured[S], Req, Resp any](l ports.Layer[Q, S, Op, B, Req, Resp], opts ...Option) *Session[Q, S, Op, B, Req, Resp] {
	cfg := resolve(opts)
	logger := cfg.logger.With("layer", cfg.name)

	var mws []transform.Middleware[Q, S, Op, B, Req, Resp]
	if cfg.metrics != nil {
		mws = append(mws, observability.Instrument[Q, S, Op, B, Req, Resp](cfg.metrics, cfg.name))
	}
	if cfg.recorder != nil {
		mws = append(mws, recorder.Record[Q, S, Op, B, Req, Resp](cfg.recorder))
		logger = logger.With("session", cfg.recorder.SessionID())
	}
	mws = append(mws, observability.Logged[Q, S, Op, B, Req, Resp](cfg.logger, cfg.name))

	return &Session[Q, S, Op, B, Req, Resp]{
		layer:  transform.Chain(l, mws...),
		logger: logger,
		name:   cfg.name,
	}
}

// Layer returns the wrapped layer, middlewares included.
func (s *Session[Q, S, Op, B, Req, Resp]) Layer() ports.Layer[Q, S, Op, B, Req, Resp] {
	return s.layer
}

// Builder returns an empty batch builder for this session's layer.
func (s *Session[Q, S, Op, B, Req, Resp]) Builder() *dsl.OpsVec[Q, S, Op] {
	return dsl.New(s.layer.Encoder(), s.layer.Capabilities())
}

// Runs returns how many batches the session has dispatched.
func (s *Session[Q, S, Op, B, Req, Resp]) Runs() int {
	return s.runs
}

// Submit builds a batch with build and sends it with SendReceive into a fresh
// buffer. If building fails, nothing is dispatched and the builder's error is
// returned.
func (s *Session[Q, S, Op, B, Req, Resp]) Submit(build func(v *dsl.OpsVec[Q, S, Op])) (B, Resp, error) {
	v := s.Builder()
	build(v)
	ops, err := v.Ops()
	if err != nil {
		s.logger.Warn("batch rejected before dispatch", "ops", v.Len(), "error", err)
		var buf B
		var resp Resp
		return buf, resp, err
	}
	buf, resp := s.Dispatch(ops)
	return buf, resp, nil
}

// Dispatch sends a prebuilt batch with SendReceive into a fresh buffer.
func (s *Session[Q, S, Op, B, Req, Resp]) Dispatch(ops []Op) (B, Resp) {
	buf := s.layer.MakeBuffer()
	resp := s.layer.SendReceive(ops, buf)
	s.runs++
	s.logger.Info("batch dispatched", "run", s.runs, "ops", len(ops), "failed", observability.Failed(resp))
	return buf, resp
}

// Run is Submit for layers that report failure as an error. A failed batch
// returns the backend's error; the buffer is returned either way.
func Run[Q, S, Op any, B ports.Measured[S]](s *Session[Q, S, Op, B, error, error], build func(v *dsl.OpsVec[Q, S, Op])) (B, error) {
	buf, resp, err := s.Submit(build)
	if err != nil {
		return buf, err
	}
	return buf, resp
}
