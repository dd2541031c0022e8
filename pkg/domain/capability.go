package domain

import (
	"fmt"
	"strings"
)

// Capabilities is the set of gate families a layer implements.
// A layer either has a family or it does not; wrappers report the set of
// the layer they wrap.
type Capabilities uint8

const (
	// PauliGate covers x, y and z.
	PauliGate Capabilities = 1 << iota
	// HGate covers h.
	HGate
	// SGate covers s and sdg.
	SGate
	// TGate covers t and tdg.
	TGate
	// CXGate covers cx.
	CXGate

	// AllGates is the union of every builtin gate family.
	AllGates = PauliGate | HGate | SGate | TGate | CXGate
)

var capabilityNames = []struct {
	cap  Capabilities
	name string
}{
	{PauliGate, "pauli"},
	{HGate, "h"},
	{SGate, "s"},
	{TGate, "t"},
	{CXGate, "cx"},
}

// Has reports whether every family in want is present.
func (c Capabilities) Has(want Capabilities) bool {
	return c&want == want
}

func (c Capabilities) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, n := range capabilityNames {
		if c.Has(n.cap) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseCapabilities parses a "|" or "," separated list such as "pauli|h|cx".
// "all" selects every builtin family.
func ParseCapabilities(s string) (Capabilities, error) {
	var out Capabilities
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' })
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "all" {
			out |= AllGates
			continue
		}
		found := false
		for _, n := range capabilityNames {
			if n.name == f {
				out |= n.cap
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown gate family %q", f)
		}
	}
	return out, nil
}

// RequiredCapability returns the gate family that gates a builtin opcode.
// Initialize, measure and user-defined opcodes need none.
func RequiredCapability(code Opcode) Capabilities {
	switch code {
	case OpX, OpY, OpZ:
		return PauliGate
	case OpH:
		return HGate
	case OpS, OpSdg:
		return SGate
	case OpT, OpTdg:
		return TGate
	case OpCX:
		return CXGate
	}
	return 0
}

// CheckSupported returns ErrUnsupportedGate if caps lacks the family code needs.
func CheckSupported(caps Capabilities, code Opcode) error {
	need := RequiredCapability(code)
	if caps.Has(need) {
		return nil
	}
	return fmt.Errorf("%w: %s requires %s, layer supports %s", ErrUnsupportedGate, code, need, caps)
}
