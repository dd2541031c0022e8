package cli

import (
	"io"

	"github.com/aretw0/lay"
	"github.com/aretw0/lay/internal/logging"
	"github.com/aretw0/lay/internal/presentation/graph"
	"github.com/aretw0/lay/pkg/program"
)

// GraphOptions configures the graph command.
type GraphOptions struct {
	Backend BackendOptions
	Program string
	// Run dispatches the program and overlays the measured bits.
	Run bool
}

// Graph renders a program as a Mermaid flowchart.
func Graph(opts GraphOptions) (string, error) {
	p, err := program.Load(opts.Program)
	if err != nil {
		return "", err
	}
	if !opts.Run {
		return graph.GenerateMermaid(p, nil), nil
	}

	if opts.Backend.Echo == nil {
		opts.Backend.Echo = io.Discard
	}
	run, err := newRunner(opts.Backend)
	if err != nil {
		return "", err
	}
	res, err := run(p, lay.WithLogger(logging.NewNop()))
	if err != nil {
		return "", err
	}
	return graph.GenerateMermaid(p, &graph.Overlay{Bits: res.Bits}), nil
}
