package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/lay"
	"github.com/aretw0/lay/pkg/adapters/echo"
	"github.com/aretw0/lay/pkg/adapters/sim"
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/measured"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/program"
)

// Backends lists the values accepted by --backend.
var Backends = []string{"sim", "echo"}

// BackendOptions selects and configures the backend programs run on.
type BackendOptions struct {
	Kind   string
	Qubits int
	Caps   string
	Grid   int
	Echo   io.Writer
	Color  bool
}

// newRunner returns a RunFunc that creates a fresh backend for every program.
func newRunner(opts BackendOptions) (lay.RunFunc, error) {
	caps := domain.AllGates
	if opts.Caps != "" {
		var err error
		if caps, err = domain.ParseCapabilities(opts.Caps); err != nil {
			return nil, err
		}
	}

	// --grid applies to programs that do not declare a width themselves.
	prepare := func(p *program.Program) error {
		if opts.Grid <= 0 || p.Grid != 0 {
			return nil
		}
		p.Grid = opts.Grid
		return p.Validate()
	}

	switch strings.ToLower(opts.Kind) {
	case "", "sim":
		return func(p *program.Program, runOpts ...lay.Option) (lay.Result, error) {
			if err := prepare(p); err != nil {
				return lay.Result{Program: p.Name}, err
			}
			b := sim.New(max(opts.Qubits, p.Width()), sim.WithCapabilities(caps))
			return lay.RunProgram(p, ports.Layer[int, int, lay.Op, *measured.Bits, error, error](b), runOpts...)
		}, nil
	case "echo":
		return func(p *program.Program, runOpts ...lay.Option) (lay.Result, error) {
			if err := prepare(p); err != nil {
				return lay.Result{Program: p.Name}, err
			}
			d := echo.New[int, int](opts.Echo, echo.WithCapabilities(caps), echo.WithColor(opts.Color))
			return lay.RunProgram(p, ports.Layer[int, int, lay.Op, *echo.Buffer[int], error, error](d), runOpts...)
		}, nil
	}
	return nil, fmt.Errorf("unknown backend %q (want one of %s)", opts.Kind, strings.Join(Backends, ", "))
}
