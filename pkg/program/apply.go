package program

import (
	"fmt"

	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/dsl"
	"github.com/aretw0/lay/pkg/transform"
)

// Apply appends the program's steps to v, mapping addresses with qubit and
// slot. It returns the builder's error, so a gate the layer does not support
// stops the program before anything is dispatched.
func Apply[Q, S, Op any](p *Program, v *dsl.OpsVec[Q, S, Op], qubit func(Address) Q, slot func(Address) S) error {
	for _, s := range p.Steps {
		switch s.Code {
		case domain.OpInit:
			v.Initialize()
		case domain.OpMeas:
			v.Measure(qubit(s.Qubit), slot(s.Slot))
		case domain.OpX:
			v.X(qubit(s.Qubit))
		case domain.OpY:
			v.Y(qubit(s.Qubit))
		case domain.OpZ:
			v.Z(qubit(s.Qubit))
		case domain.OpH:
			v.H(qubit(s.Qubit))
		case domain.OpS:
			v.S(qubit(s.Qubit))
		case domain.OpSdg:
			v.Sdg(qubit(s.Qubit))
		case domain.OpT:
			v.T(qubit(s.Qubit))
		case domain.OpTdg:
			v.Tdg(qubit(s.Qubit))
		case domain.OpCX:
			v.CX(qubit(s.Qubit), qubit(s.Target))
		default:
			return fmt.Errorf("%w: %s", ErrInvalidProgram, s.Code)
		}
	}
	return v.Err()
}

// ApplyLinear replays p onto an integer-addressed builder. Grid addresses
// are folded with the program's width.
func ApplyLinear[Op any](p *Program, v *dsl.OpsVec[int, int, Op]) error {
	return Apply(p, v, p.Index, p.Index)
}

// ApplyGrid replays p onto a builder addressed by grid points.
func ApplyGrid[Op any](p *Program, v *dsl.OpsVec[transform.Point, transform.Point, Op]) error {
	point := func(a Address) transform.Point {
		return transform.Point{X: a.X, Y: a.Y}
	}
	return Apply(p, v, point, point)
}
