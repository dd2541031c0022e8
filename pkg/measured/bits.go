package measured

import "github.com/aretw0/lay/pkg/ports"

// Bits is a growable slot-indexed result register. Backends with integer
// slots can use it directly as their buffer.
//
// Slots outside the register read as false.
type Bits struct {
	bits []bool
}

// NewBits returns a register with n slots, all false.
func NewBits(n int) *Bits {
	return &Bits{bits: make([]bool, n)}
}

// Get reads slot n.
func (b *Bits) Get(n int) bool {
	if n < 0 || n >= len(b.bits) {
		return false
	}
	return b.bits[n]
}

// Set writes slot n, growing the register when needed.
func (b *Bits) Set(n int, v bool) {
	if n < 0 {
		return
	}
	if n >= len(b.bits) {
		b.bits = append(b.bits, make([]bool, n+1-len(b.bits))...)
	}
	b.bits[n] = v
}

// Len returns the number of slots held.
func (b *Bits) Len() int {
	return len(b.bits)
}

// Reset clears every slot.
func (b *Bits) Reset() {
	clear(b.bits)
}

// String renders the register as a string of 0s and 1s, slot 0 first.
func (b *Bits) String() string {
	out := make([]byte, len(b.bits))
	for i, v := range b.bits {
		out[i] = '0'
		if v {
			out[i] = '1'
		}
	}
	return string(out)
}

// CopyFrom replaces the contents with src.
func (b *Bits) CopyFrom(src []bool) {
	b.bits = append(b.bits[:0], src...)
}

var _ ports.Measured[int] = (*Bits)(nil)
