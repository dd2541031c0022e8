package domain

import (
	"fmt"
	"strings"
)

// Opcode identifies a command. The numeric values are stable and shared with
// external encoders and decoders.
type Opcode uint16

// Builtin operation IDs.
const (
	OpInit Opcode = 1
	OpMeas Opcode = 2
	OpX    Opcode = 3
	OpY    Opcode = 4
	OpZ    Opcode = 5
	OpH    Opcode = 6
	OpS    Opcode = 7
	OpSdg  Opcode = 8
	OpT    Opcode = 9
	OpTdg  Opcode = 10
	OpCX   Opcode = 11

	// OpUserDef is the first value available to backend-specific operations.
	// Values between OpCX and OpUserDef are reserved for future builtins.
	OpUserDef Opcode = 256
)

var opcodeNames = map[Opcode]string{
	OpInit: "initialize",
	OpMeas: "measure",
	OpX:    "x",
	OpY:    "y",
	OpZ:    "z",
	OpH:    "h",
	OpS:    "s",
	OpSdg:  "sdg",
	OpT:    "t",
	OpTdg:  "tdg",
	OpCX:   "cx",
}

// aliases accepted by ParseOpcode in addition to the canonical names.
var opcodeAliases = map[string]Opcode{
	"init": OpInit,
	"meas": OpMeas,
	"cnot": OpCX,
}

// IsBuiltin reports whether the opcode belongs to the builtin table.
func (c Opcode) IsBuiltin() bool {
	return c >= OpInit && c <= OpCX
}

// IsUserDefined reports whether the opcode is in the backend-specific range.
func (c Opcode) IsUserDefined() bool {
	return c >= OpUserDef
}

// IsReserved reports whether the opcode can never be produced: zero, or the
// gap kept for future builtins.
func (c Opcode) IsReserved() bool {
	return !c.IsBuiltin() && !c.IsUserDefined()
}

func (c Opcode) String() string {
	if name, ok := opcodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("op#%d", uint16(c))
}

// ParseOpcode resolves a builtin operation name (case-insensitive).
func ParseOpcode(name string) (Opcode, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if code, ok := opcodeAliases[key]; ok {
		return code, nil
	}
	for code, n := range opcodeNames {
		if n == key {
			return code, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOpcode, name)
}

// PayloadOf returns the payload shape required by a builtin opcode.
// The second return value is false for non-builtin opcodes, whose shape is
// defined by the backend that owns them.
func PayloadOf(c Opcode) (Payload, bool) {
	switch c {
	case OpInit:
		return PayloadNone, true
	case OpMeas:
		return PayloadQS, true
	case OpX, OpY, OpZ, OpH, OpS, OpSdg, OpT, OpTdg:
		return PayloadQ, true
	case OpCX:
		return PayloadQQ, true
	}
	return 0, false
}
