package transform

import (
	"fmt"

	"github.com/aretw0/lay/pkg/ports"
)

// Point addresses a qubit or slot on a two-dimensional grid.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Grid folds Points into linear indices X + Y*Width.
// Addresses with X >= Width alias other points; staying inside the grid is
// the caller's responsibility.
type Grid struct {
	Width int
}

func (g Grid) Qubit(p Point) int { return p.X + p.Y*g.Width }
func (g Grid) Slot(p Point) int { return p.X + p.Y*g.Width }

// NewSerialization wraps an integer-addressed layer so that it can be driven
// with grid coordinates of the given width.
func NewSerialization[Op any, B ports.Measured[int], Req, Resp any](
	inner ports.Layer[int, int, Op, B, Req, Resp],
	width int,
) *Convert[Point, Point, int, int, Op, B, Req, Resp] {
	if width <= 0 {
		panic(fmt.Sprintf("transform: grid width must be positive, got %d", width))
	}
	return NewConvert[Point, Point, int, int, Op, B, Req, Resp](inner, Grid{Width: width})
}
