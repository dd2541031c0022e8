package domain

import (
	"fmt"
	"reflect"
	"strings"
)

// Payload names the shape of the data carried by an Operation.
type Payload uint8

const (
	PayloadNone Payload = iota
	PayloadQ
	PayloadQQ
	PayloadQS
	PayloadQF
	PayloadQD
	PayloadQFF
	PayloadExt
)

var payloadNames = [...]string{"none", "q", "qq", "qs", "qf", "qd", "qff", "ext"}

func (p Payload) String() string {
	if int(p) < len(payloadNames) {
		return payloadNames[p]
	}
	return fmt.Sprintf("payload#%d", uint8(p))
}

// Operation is the reference encoding of a single command addressed by
// qubits of type Q and classical slots of type S.
//
// Only the fields named by Payload are meaningful; the rest hold zero values.
// Operations are values: copy them freely, never mutate one that has been
// appended to a batch.
type Operation[Q, S comparable] struct {
	Code    Opcode
	Payload Payload

	// Qubit is the target of one-qubit gates and measurements, and the
	// control of two-qubit gates.
	Qubit Q
	// Qubit2 is the target of two-qubit gates.
	Qubit2 Q
	Slot   S
	F      [2]float32
	D      float64
	// Ext carries a backend-defined payload. It is never inspected here.
	Ext any
}

// Initialize resets the backend to its initial state.
func Initialize[Q, S comparable]() Operation[Q, S] {
	return Operation[Q, S]{Code: OpInit, Payload: PayloadNone}
}

// Measure measures qubit q and stores the outcome in slot s.
func Measure[Q, S comparable](q Q, s S) Operation[Q, S] {
	return Operation[Q, S]{Code: OpMeas, Payload: PayloadQS, Qubit: q, Slot: s}
}

// Gate builds a one-qubit operation for any opcode. Builtin callers should
// prefer the named constructors.
func Gate[Q, S comparable](code Opcode, q Q) Operation[Q, S] {
	return Operation[Q, S]{Code: code, Payload: PayloadQ, Qubit: q}
}

// Gate2 builds a two-qubit operation with control c and target t.
func Gate2[Q, S comparable](code Opcode, c, t Q) Operation[Q, S] {
	return Operation[Q, S]{Code: code, Payload: PayloadQQ, Qubit: c, Qubit2: t}
}

// X is the Pauli-X (bit flip) gate.
func X[Q, S comparable](q Q) Operation[Q, S] { return Gate[Q, S](OpX, q) }
// Y is the Pauli-Y gate.
func Y[Q, S comparable](q Q) Operation[Q, S] { return Gate[Q, S](OpY, q) }
// Z is the Pauli-Z (phase flip) gate.
func Z[Q, S comparable](q Q) Operation[Q, S] { return Gate[Q, S](OpZ, q) }
// H is the Hadamard gate.
func H[Q, S comparable](q Q) Operation[Q, S] { return Gate[Q, S](OpH, q) }
// S is the phase gate, a quarter turn about Z.
func S[Q, S comparable](q Q) Operation[Q, S] { return Gate[Q, S](OpS, q) }
// Sdg is the inverse of S.
func Sdg[Q, S comparable](q Q) Operation[Q, S] { return Gate[Q, S](OpSdg, q) }
// T is the eighth-turn phase gate.
func T[Q, S comparable](q Q) Operation[Q, S] { return Gate[Q, S](OpT, q) }
// Tdg is the inverse of T.
func Tdg[Q, S comparable](q Q) Operation[Q, S] { return Gate[Q, S](OpTdg, q) }

// CX is the controlled-NOT gate.
func CX[Q, S comparable](c, t Q) Operation[Q, S] { return Gate2[Q, S](OpCX, c, t) }

// QF builds a qubit+float32 operation, e.g. a user-defined rotation.
func QF[Q, S comparable](code Opcode, q Q, f float32) Operation[Q, S] {
	return Operation[Q, S]{Code: code, Payload: PayloadQF, Qubit: q, F: [2]float32{f, 0}}
}

// QD builds a qubit+float64 operation.
func QD[Q, S comparable](code Opcode, q Q, d float64) Operation[Q, S] {
	return Operation[Q, S]{Code: code, Payload: PayloadQD, Qubit: q, D: d}
}

// QFF builds a qubit+two-float32 operation.
func QFF[Q, S comparable](code Opcode, q Q, f0, f1 float32) Operation[Q, S] {
	return Operation[Q, S]{Code: code, Payload: PayloadQFF, Qubit: q, F: [2]float32{f0, f1}}
}

// Extension wraps a backend-specific payload. The code must be at least
// OpUserDef so it can never be confused with a builtin.
func Extension[Q, S comparable](code Opcode, payload any) (Operation[Q, S], error) {
	if !code.IsUserDefined() {
		return Operation[Q, S]{}, fmt.Errorf("%w: extension code %d is below %d", ErrReservedOpcode, code, OpUserDef)
	}
	return Operation[Q, S]{Code: code, Payload: PayloadExt, Ext: payload}, nil
}

// MustExtension is like Extension but panics on an invalid code.
// Use it for package-level extension constants.
func MustExtension[Q, S comparable](code Opcode, payload any) Operation[Q, S] {
	op, err := Extension[Q, S](code, payload)
	if err != nil {
		panic(err)
	}
	return op
}

// Validate checks that the opcode is usable and, for builtins, that the
// payload shape matches the one the opcode requires.
func (o Operation[Q, S]) Validate() error {
	if o.Code.IsReserved() {
		return fmt.Errorf("%w: %d", ErrReservedOpcode, o.Code)
	}
	if want, ok := PayloadOf(o.Code); ok && want != o.Payload {
		return fmt.Errorf("%w: %s wants %s, got %s", ErrPayloadMismatch, o.Code, want, o.Payload)
	}
	if o.Payload == PayloadExt && !o.Code.IsUserDefined() {
		return fmt.Errorf("%w: extension payload tagged %d", ErrReservedOpcode, o.Code)
	}
	return nil
}

// Equal reports whether two operations have the same opcode and payload.
// Fields outside the payload shape are ignored.
func (o Operation[Q, S]) Equal(other Operation[Q, S]) bool {
	if o.Code != other.Code || o.Payload != other.Payload {
		return false
	}
	switch o.Payload {
	case PayloadNone:
		return true
	case PayloadQ:
		return o.Qubit == other.Qubit
	case PayloadQQ:
		return o.Qubit == other.Qubit && o.Qubit2 == other.Qubit2
	case PayloadQS:
		return o.Qubit == other.Qubit && o.Slot == other.Slot
	case PayloadQF:
		return o.Qubit == other.Qubit && o.F[0] == other.F[0]
	case PayloadQD:
		return o.Qubit == other.Qubit && o.D == other.D
	case PayloadQFF:
		return o.Qubit == other.Qubit && o.F == other.F
	case PayloadExt:
		return reflect.DeepEqual(o.Ext, other.Ext)
	}
	return false
}

// String renders the operation in call syntax, e.g. "cx(0, 1)".
func (o Operation[Q, S]) String() string {
	var args []string
	switch o.Payload {
	case PayloadQ:
		args = []string{fmt.Sprint(o.Qubit)}
	case PayloadQQ:
		args = []string{fmt.Sprint(o.Qubit), fmt.Sprint(o.Qubit2)}
	case PayloadQS:
		args = []string{fmt.Sprint(o.Qubit), fmt.Sprint(o.Slot)}
	case PayloadQF:
		args = []string{fmt.Sprint(o.Qubit), fmt.Sprint(o.F[0])}
	case PayloadQD:
		args = []string{fmt.Sprint(o.Qubit), fmt.Sprint(o.D)}
	case PayloadQFF:
		args = []string{fmt.Sprint(o.Qubit), fmt.Sprint(o.F[0]), fmt.Sprint(o.F[1])}
	case PayloadExt:
		args = []string{fmt.Sprintf("%v", o.Ext)}
	}
	return o.Code.String() + "(" + strings.Join(args, ", ") + ")"
}
