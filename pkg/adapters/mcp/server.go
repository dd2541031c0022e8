// Package mcp exposes program execution and dispatch traces as Model Context
// Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lay"
	"github.com/aretw0/lay/internal/logging"
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/program"
	"github.com/aretw0/lay/pkg/recorder"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps a RunFunc and an optional trace store as an MCP server. Runs
// are serialized like the HTTP server's.
type Server struct {
	run       lay.RunFunc
	store     ports.TraceStore
	logger    *slog.Logger
	limits    program.Limits
	mcpServer *server.MCPServer

	mu sync.Mutex
}

type Option func(*Server)

// WithTraceStore records every run and registers the trace tools.
func WithTraceStore(store ports.TraceStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithLimits rejects programs larger than l. Zero fields are unlimited.
func WithLimits(l program.Limits) Option {
	return func(s *Server) {
		s.limits = l
	}
}

// NewServer creates an MCP server running programs with run.
func NewServer(run lay.RunFunc, opts ...Option) *Server {
	s := &Server{
		run:       run,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("lay-mcp", strings.TrimSpace(lay.Version), server.WithRecovery()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio serves on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("run_program",
		mcp.WithDescription("Run a program of quantum operations and return the measured bits."),
		mcp.WithString("program", mcp.Required(), mcp.Description("The program source")),
		mcp.WithString("format", mcp.Description("yaml (default) or json")),
	), s.handleRunProgram)

	if s.store == nil {
		return
	}

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the IDs of recorded sessions."),
	), s.handleListSessions)

	s.mcpServer.AddTool(mcp.NewTool("list_traces",
		mcp.WithDescription("List the dispatch traces of a session in order."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), s.handleListTraces)

	s.mcpServer.AddTool(mcp.NewTool("get_trace",
		mcp.WithDescription("Get a single dispatch trace."),
		mcp.WithString("trace_id", mcp.Required(), mcp.Description("Trace ID")),
	), s.handleGetTrace)
}

func (s *Server) handleRunProgram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := request.RequireString("program")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var p *program.Program
	switch format := request.GetString("format", "yaml"); format {
	case "yaml":
		p, err = program.ParseYAML([]byte(src))
	case "json":
		p, err = program.ParseJSON([]byte(src))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.limits.Check(p); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := []lay.Option{lay.WithLogger(s.logger), lay.WithName("mcp")}
	if s.store != nil {
		opts = append(opts, lay.WithRecorder(recorder.New(s.store, recorder.WithLogger(s.logger))))
	}

	res, err := s.runLocked(p, opts...)
	if err != nil {
		if !errors.Is(err, domain.ErrUnsupportedGate) {
			s.logger.Error("MCP run failed", "program", p.Name, "error", err)
		}
		res.Error = err.Error()
		return jsonResult(res, true), nil
	}
	return jsonResult(res, false), nil
}

func (s *Server) runLocked(p *program.Program, opts ...lay.Option) (lay.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(p, opts...)
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.store.Sessions(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list sessions failed: %v", err)), nil
	}
	return jsonResult(sessions, false), nil
}

func (s *Server) handleListTraces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	traces, err := s.store.List(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list traces failed: %v", err)), nil
	}
	return jsonResult(traces, false), nil
}

func (s *Server) handleGetTrace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("trace_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	trace, err := s.store.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(trace, false), nil
}

// jsonResult renders v as the text content of a tool result.
func jsonResult(v any, isError bool) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err))
	}
	res := mcp.NewToolResultText(string(data))
	res.IsError = isError
	return res
}
