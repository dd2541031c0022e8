// Package http exposes program execution and dispatch traces over HTTP.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/lay"
	"github.com/aretw0/lay/api"
	"github.com/aretw0/lay/internal/logging"
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/observability"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/program"
	"github.com/aretw0/lay/pkg/recorder"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBody bounds the size of an uploaded program.
const maxBody = 1 << 20

// Server handles the HTTP API. Runs are serialized, so the RunFunc may share a
// single backend between requests.
type Server struct {
	run       lay.RunFunc
	store     ports.TraceStore
	metrics   *observability.Metrics
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
	limits    program.Limits
	runRoute  *routers.Route

	mu sync.Mutex
}

type Option func(*Server)

// WithTraceStore records every run and serves the traces.
func WithTraceStore(store ports.TraceStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithRegistry registers dispatch metrics with reg and serves them on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.metrics = observability.NewMetrics(reg)
		s.gatherer = reg
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxQubits rejects programs needing more qubits than n (default 64).
func WithMaxQubits(n int) Option {
	return func(s *Server) {
		s.limits.Qubits = n
	}
}

// WithMaxSlots rejects programs writing more classical slots than n
// (default 1024).
func WithMaxSlots(n int) Option {
	return func(s *Server) {
		s.limits.Slots = n
	}
}

// DefaultLimits are the limits of a server built without WithMaxQubits or
// WithMaxSlots.
var DefaultLimits = program.Limits{Qubits: 64, Slots: 1024}

// NewServer creates a server running programs with run. It panics if the
// embedded OpenAPI document does not load.
func NewServer(run lay.RunFunc, opts ...Option) *Server {
	s := &Server{
		run:      run,
		logger:   logging.NewNop(),
		limits:   DefaultLimits,
		runRoute: mustRunRoute(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func mustRunRoute() *routers.Route {
	doc, err := api.Load()
	if err != nil {
		panic(fmt.Sprintf("http: invalid OpenAPI document: %v", err))
	}
	item := doc.Paths.Value("/v1/run")
	if item == nil || item.Post == nil {
		panic("http: OpenAPI document has no POST /v1/run")
	}
	return &routers.Route{
		Spec:      doc,
		Path:      "/v1/run",
		PathItem:  item,
		Method:    http.MethodPost,
		Operation: item.Post,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Spec)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/run", s.Run)
		r.Get("/sessions", s.ListSessions)
		r.Get("/sessions/{sessionID}/traces", s.ListTraces)
		r.Get("/traces/{traceID}", s.GetTrace)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Run handles POST /v1/run. The body is a program in JSON, checked against the
// OpenAPI schema, or in YAML when the Content-Type says so.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Run: Invalid request body", "error", err)
		return
	}

	var p *program.Program
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		p, err = program.ParseYAML(data)
	} else if err = s.validateJSON(r, data); err == nil {
		p, err = program.ParseJSON(data)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.limits.Check(p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := []lay.Option{lay.WithLogger(s.logger), lay.WithName("http")}
	if s.metrics != nil {
		opts = append(opts, lay.WithMetrics(s.metrics))
	}
	if s.store != nil {
		opts = append(opts, lay.WithRecorder(recorder.New(s.store, recorder.WithLogger(s.logger))))
	}

	res, err := s.runLocked(p, opts...)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, domain.ErrUnsupportedGate):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		s.logger.Error("Run failed", "program", p.Name, "error", err)
		writeJSON(w, http.StatusInternalServerError, res)
	}
}

// runLocked serializes runs. The lock is released even if the backend panics.
func (s *Server) runLocked(p *program.Program, opts ...lay.Option) (lay.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(p, opts...)
}

// validateJSON checks a JSON program body against the OpenAPI request schema.
func (s *Server) validateJSON(r *http.Request, data []byte) error {
	req := r.Clone(r.Context())
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{
		Request: req,
		Route:   s.runRoute,
	})
}

// ListSessions handles GET /v1/sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	sessions, err := s.store.Sessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// ListTraces handles GET /v1/sessions/{sessionID}/traces.
func (s *Server) ListTraces(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	traces, err := s.store.List(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, traces)
}

// GetTrace handles GET /v1/traces/{traceID}.
func (s *Server) GetTrace(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	trace, err := s.store.Get(r.Context(), chi.URLParam(r, "traceID"))
	if errors.Is(err, domain.ErrTraceNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, trace)
}

func (s *Server) hasStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("trace recording is disabled"))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
