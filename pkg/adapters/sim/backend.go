package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/lay/internal/logging"
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/measured"
	"github.com/aretw0/lay/pkg/ports"
)

// Op is the operation type of the simulator.
type Op = domain.Operation[int, int]

// OpFlip is a simulator extension that flips every qubit listed in its
// []int payload in a single step.
const OpFlip = domain.OpUserDef

var (
	// ErrUnsupportedOp is returned for opcodes the simulator does not implement.
	ErrUnsupportedOp = errors.New("sim: unsupported operation")
	// ErrAddress is returned for a qubit or slot outside the register.
	ErrAddress = errors.New("sim: address out of range")
)

// DefaultCapabilities are the gate families a classical bit simulator can
// execute exactly. Hadamard creates superposition and is not among them.
const DefaultCapabilities = domain.PauliGate | domain.SGate | domain.TGate | domain.CXGate

// Backend simulates qubits restricted to computational basis states.
//
// Send executes a batch immediately; Receive copies the recorded results into
// the caller's buffer and reports the outcome of the last batch.
type Backend struct {
	qubits  []bool
	results *measured.Bits
	lastErr error
	caps    domain.Capabilities
	logger  *slog.Logger
	batches int
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets a structured logger for the backend.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// WithCapabilities restricts the gate families the backend advertises.
// Families the simulator cannot execute are ignored.
func WithCapabilities(caps domain.Capabilities) Option {
	return func(b *Backend) {
		b.caps = caps & DefaultCapabilities
	}
}

// New creates a simulator with n qubits, all zero.
func New(n int, opts ...Option) *Backend {
	b := &Backend{
		qubits:  make([]bool, n),
		results: measured.NewBits(0),
		caps:    DefaultCapabilities,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Flip builds the OpFlip extension for qs.
func Flip(qs ...int) Op {
	return domain.MustExtension[int, int](OpFlip, append([]int(nil), qs...))
}

// Qubits returns the number of simulated qubits.
func (b *Backend) Qubits() int {
	return len(b.qubits)
}

// State returns a copy of the current basis state.
func (b *Backend) State() []bool {
	return append([]bool(nil), b.qubits...)
}

// Batches returns how many batches have been sent.
func (b *Backend) Batches() int {
	return b.batches
}

// Send executes ops in order. Execution stops at the first failing operation.
func (b *Backend) Send(ops []Op) error {
	b.batches++
	b.lastErr = nil
	for i, op := range ops {
		if err := b.apply(op); err != nil {
			b.lastErr = fmt.Errorf("op %d %s: %w", i, op, err)
			b.logger.Warn("batch aborted", "batch", b.batches, "index", i, "error", b.lastErr)
			return b.lastErr
		}
	}
	b.logger.Debug("batch executed", "batch", b.batches, "ops", len(ops))
	return nil
}

// Receive copies the recorded results into buf and returns the error of the
// last batch, if any.
func (b *Backend) Receive(buf *measured.Bits) error {
	buf.CopyFrom(b.snapshot())
	return b.lastErr
}

func (b *Backend) SendReceive(ops []Op, buf *measured.Bits) error {
	return ports.SendThenReceive[Op, *measured.Bits, error, error](b, ops, buf)
}

func (b *Backend) MakeBuffer() *measured.Bits {
	return measured.NewBits(0)
}

func (b *Backend) Encoder() domain.Encoder[int, int, Op] {
	return domain.Encode[int, int]()
}

func (b *Backend) Capabilities() domain.Capabilities {
	return b.caps
}

func (b *Backend) snapshot() []bool {
	out := make([]bool, b.results.Len())
	for i := range out {
		out[i] = b.results.Get(i)
	}
	return out
}

func (b *Backend) qubit(q int) error {
	if q < 0 || q >= len(b.qubits) {
		return fmt.Errorf("%w: qubit %d of %d", ErrAddress, q, len(b.qubits))
	}
	return nil
}

func (b *Backend) apply(op Op) error {
	if err := op.Validate(); err != nil {
		return err
	}
	if err := domain.CheckSupported(b.caps, op.Code); err != nil {
		return err
	}

	switch op.Code {
	case domain.OpInit:
		clear(b.qubits)
		b.results.Reset()
	case domain.OpMeas:
		if err := b.qubit(op.Qubit); err != nil {
			return err
		}
		if op.Slot < 0 {
			return fmt.Errorf("%w: slot %d", ErrAddress, op.Slot)
		}
		b.results.Set(op.Slot, b.qubits[op.Qubit])
	case domain.OpX, domain.OpY:
		if err := b.qubit(op.Qubit); err != nil {
			return err
		}
		b.qubits[op.Qubit] = !b.qubits[op.Qubit]
	case domain.OpZ, domain.OpS, domain.OpSdg, domain.OpT, domain.OpTdg:
		// phase only; basis states are unchanged
		return b.qubit(op.Qubit)
	case domain.OpCX:
		if err := b.qubit(op.Qubit); err != nil {
			return err
		}
		if err := b.qubit(op.Qubit2); err != nil {
			return err
		}
		if b.qubits[op.Qubit] {
			b.qubits[op.Qubit2] = !b.qubits[op.Qubit2]
		}
	case OpFlip:
		qs, ok := op.Ext.([]int)
		if !ok {
			return fmt.Errorf("%w: flip payload %T", ErrUnsupportedOp, op.Ext)
		}
		for _, q := range qs {
			if err := b.qubit(q); err != nil {
				return err
			}
			b.qubits[q] = !b.qubits[q]
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOp, op.Code)
	}
	return nil
}

var _ ports.Layer[int, int, Op, *measured.Bits, error, error] = (*Backend)(nil)
