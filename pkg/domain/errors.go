package domain

import "errors"

// ErrUnsupportedGate is returned when an operation needs a gate family the
// target layer does not implement.
var ErrUnsupportedGate = errors.New("unsupported gate")

// ErrReservedOpcode is returned for opcode zero, for the range reserved for
// future builtins, and for extension payloads tagged below OpUserDef.
var ErrReservedOpcode = errors.New("reserved opcode")

// ErrUnknownOpcode is returned when an operation name cannot be resolved.
var ErrUnknownOpcode = errors.New("unknown opcode")

// ErrPayloadMismatch is returned when a builtin operation carries a payload
// shape other than the one its opcode requires.
var ErrPayloadMismatch = errors.New("payload does not match opcode")

// ErrTraceNotFound is returned when a trace ID cannot be found in a store.
var ErrTraceNotFound = errors.New("trace not found")
