package lay

import (
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/dsl"
	"github.com/aretw0/lay/pkg/measured"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/program"
	"github.com/aretw0/lay/pkg/transform"
)

// Op is the operation type of the bundled integer-addressed backends.
type Op = domain.Operation[int, int]

// Result is the outcome of running a program.
type Result struct {
	Program string   `json:"program,omitempty"`
	Session string   `json:"session,omitempty"`
	Ops     []string `json:"ops"`
	Bits    string   `json:"bits"`
	Error   string   `json:"error,omitempty"`
}

// RunFunc runs a program on a backend of the caller's choosing.
type RunFunc func(p *program.Program, opts ...Option) (Result, error)

// RunProgram builds p for l and dispatches it as one batch. Programs that
// declare a grid are addressed through a grid Convert layer of that width.
//
// A program using a gate l does not support is rejected before dispatch
// with an error wrapping domain.ErrUnsupportedGate. A batch the backend fails
// returns its error along with a Result whose bits all read as zero.
func RunProgram[B ports.Measured[int]](p *program.Program, l ports.Layer[int, int, Op, B, error, error], opts ...Option) (Result, error) {
	res := Result{Program: p.Name}
	if r := resolve(opts).recorder; r != nil {
		res.Session = r.SessionID()
	}

	if p.Grid > 0 {
		g := transform.NewSerialization[Op, B, error, error](l, p.Grid)
		s := NewSession(g, opts...)
		v := s.Builder()
		if err := program.ApplyGrid(p, v); err != nil {
			return res, err
		}
		buf, err := s.Dispatch(v.Slice())
		return finish(res, v, buf.Inner(), p.Slots(), err)
	}

	s := NewSession(l, opts...)
	v := s.Builder()
	if err := program.ApplyLinear(p, v); err != nil {
		return res, err
	}
	buf, err := s.Dispatch(v.Slice())
	return finish(res, v, buf, p.Slots(), err)
}

func finish[Q, S any, B ports.Measured[int]](res Result, v *dsl.OpsVec[Q, S, Op], buf B, slots int, err error) (Result, error) {
	res.Ops = make([]string, 0, v.Len())
	for op := range v.All() {
		res.Ops = append(res.Ops, op.String())
	}
	res.Bits = measured.Read[int](measured.Fallible[int](buf, err)).Bits(0, slots)
	if err != nil {
		res.Error = err.Error()
	}
	return res, err
}
