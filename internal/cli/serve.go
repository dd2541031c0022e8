package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lay"
	layhttp "github.com/aretw0/lay/pkg/adapters/http"
	laymcp "github.com/aretw0/lay/pkg/adapters/mcp"
	"github.com/aretw0/lay/pkg/adapters/memory"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/program"
	"github.com/prometheus/client_golang/prometheus"
)

// ServeOptions configures the HTTP server, or the MCP server when MCP is set.
type ServeOptions struct {
	Backend   BackendOptions
	Addr      string
	Store     StoreOptions
	LogLevel  string
	MaxQubits int
	MaxSlots  int
	// MCP selects an MCP transport instead of the HTTP API: "stdio" or "sse".
	MCP    string
	Stderr io.Writer
}

func (o ServeOptions) limits() program.Limits {
	l := layhttp.DefaultLimits
	if o.MaxQubits > 0 {
		l.Qubits = o.MaxQubits
	}
	if o.MaxSlots > 0 {
		l.Slots = o.MaxSlots
	}
	return l
}

// serveDeps builds what both servers share: the logger, the runner and the
// trace store, which falls back to memory.
func serveDeps(opts ServeOptions) (*slog.Logger, lay.RunFunc, ports.TraceStore, func() error, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger, err := createLogger(stderr, opts.LogLevel)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if opts.Backend.Echo == nil {
		opts.Backend.Echo = stderr
	}
	run, err := newRunner(opts.Backend)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	store, closeStore, err := openStore(opts.Store, memory.NewTraceStore())
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return logger, run, store, closeStore, nil
}

// NewHandler builds the HTTP handler described by opts. Traces go to the
// configured store and to memory otherwise.
func NewHandler(opts ServeOptions) (http.Handler, func() error, error) {
	logger, run, store, closeStore, err := serveDeps(opts)
	if err != nil {
		return nil, nil, err
	}
	limits := opts.limits()
	h := layhttp.NewServer(run,
		layhttp.WithLogger(logger),
		layhttp.WithTraceStore(store),
		layhttp.WithRegistry(prometheus.NewRegistry()),
		layhttp.WithMaxQubits(limits.Qubits),
		layhttp.WithMaxSlots(limits.Slots),
	).Handler()
	return h, closeStore, nil
}

// NewMCPServer builds the MCP server described by opts.
func NewMCPServer(opts ServeOptions) (*laymcp.Server, func() error, error) {
	logger, run, store, closeStore, err := serveDeps(opts)
	if err != nil {
		return nil, nil, err
	}
	srv := laymcp.NewServer(run,
		laymcp.WithLogger(logger),
		laymcp.WithTraceStore(store),
		laymcp.WithLimits(opts.limits()),
	)
	return srv, closeStore, nil
}

// serveMCP runs the MCP server until SIGINT or SIGTERM. Over stdio the
// logger must stay off stdout, which createLogger already guarantees.
func serveMCP(opts ServeOptions) error {
	srv, closeStore, err := NewMCPServer(opts)
	if err != nil {
		return err
	}
	defer closeStore()

	switch opts.MCP {
	case "stdio":
		return srv.ServeStdio()
	case "sse":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ServeSSE(ctx, opts.Addr)
	}
	return fmt.Errorf("unknown MCP transport %q (want stdio or sse)", opts.MCP)
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// gracefully.
func Serve(opts ServeOptions) error {
	if opts.MCP != "" {
		return serveMCP(opts)
	}
	handler, closeStore, err := NewHandler(opts)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("Starting lay server on %s\n", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		fmt.Println("\nShutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown did not complete: %w", err)
	}
	fmt.Println("lay server stopped gracefully")
	return nil
}
