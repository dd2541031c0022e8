// Package echo provides a driver that prints every operation it receives
// instead of executing it. It supports every builtin gate family and is
// useful for inspecting what a stack of layers finally dispatches.
package echo

import (
	"fmt"
	"io"

	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/muesli/termenv"
)

// Driver writes one line per operation to its output.
type Driver[Q, S comparable] struct {
	out    *termenv.Output
	color  bool
	caps   domain.Capabilities
	prefix string
}

// Option configures a Driver.
type Option func(*config)

type config struct {
	color  bool
	caps   domain.Capabilities
	prefix string
}

// WithColor highlights operation names using the terminal's color profile.
func WithColor(enabled bool) Option {
	return func(c *config) {
		c.color = enabled
	}
}

// WithCapabilities limits the gate families the driver advertises.
func WithCapabilities(caps domain.Capabilities) Option {
	return func(c *config) {
		c.caps = caps
	}
}

// WithPrefix prepends a fixed string to every line.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
	}
}

// New creates a driver writing to w.
func New[Q, S comparable](w io.Writer, opts ...Option) *Driver[Q, S] {
	cfg := config{caps: domain.AllGates}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	if cfg.color {
		out = termenv.NewOutput(w)
	}
	return &Driver[Q, S]{out: out, color: cfg.color, caps: cfg.caps, prefix: cfg.prefix}
}

// Send prints each operation in order.
func (d *Driver[Q, S]) Send(ops []domain.Operation[Q, S]) error {
	for _, op := range ops {
		if err := d.line(d.render(op)); err != nil {
			return err
		}
	}
	return nil
}

// Receive prints a receive marker. The buffer is left untouched.
func (d *Driver[Q, S]) Receive(buf *Buffer[S]) error {
	return d.line(d.name("receive") + "()")
}

func (d *Driver[Q, S]) SendReceive(ops []domain.Operation[Q, S], buf *Buffer[S]) error {
	if err := d.Send(ops); err != nil {
		return err
	}
	return d.Receive(buf)
}

func (d *Driver[Q, S]) MakeBuffer() *Buffer[S] {
	return &Buffer[S]{}
}

func (d *Driver[Q, S]) Encoder() domain.Encoder[Q, S, domain.Operation[Q, S]] {
	return domain.Encode[Q, S]()
}

func (d *Driver[Q, S]) Capabilities() domain.Capabilities {
	return d.caps
}

func (d *Driver[Q, S]) render(op domain.Operation[Q, S]) string {
	s := op.String()
	name := op.Code.String()
	return d.name(name) + s[len(name):]
}

func (d *Driver[Q, S]) name(s string) string {
	if !d.color {
		return s
	}
	return d.out.String(s).Foreground(d.out.Color("#818cf8")).Bold().String()
}

func (d *Driver[Q, S]) line(s string) error {
	_, err := fmt.Fprintln(d.out, d.prefix+s)
	return err
}

// Buffer is the echo driver's buffer. Nothing is ever measured, so every
// slot reads as false.
type Buffer[S any] struct{}

func (Buffer[S]) Get(S) bool { return false }

var _ ports.Layer[int, int, domain.Operation[int, int], *Buffer[int], error, error] = (*Driver[int, int])(nil)
