package measured

import (
	"fmt"

	"github.com/aretw0/lay/pkg/ports"
	"golang.org/x/exp/constraints"
)

const invalidRange = "measured: invalid range"

func checkRange(start, stop, width int) {
	if start < 0 || start > stop || stop-start > width {
		panic(fmt.Sprintf("%s [%d, %d) for %d bits", invalidRange, start, stop, width))
	}
}

// RangeU8 packs slots [start, stop) into a uint8. stop-start must not exceed 8.
func RangeU8[S constraints.Integer](m ports.Measured[S], start, stop int) uint8 {
	checkRange(start, stop, 8)
	var result uint8
	for i := start; i < stop; i++ {
		if m.Get(S(i)) {
			result |= 1 << (i - start)
		}
	}
	return result
}

// RangeU16 packs slots [start, stop) into a uint16. stop-start must not exceed 16.
func RangeU16[S constraints.Integer](m ports.Measured[S], start, stop int) uint16 {
	checkRange(start, stop, 16)
	if stop-start <= 8 {
		return uint16(RangeU8(m, start, stop))
	}
	return uint16(RangeU8(m, start, start+8)) | uint16(RangeU8(m, start+8, stop))<<8
}

// RangeU32 packs slots [start, stop) into a uint32. stop-start must not exceed 32.
func RangeU32[S constraints.Integer](m ports.Measured[S], start, stop int) uint32 {
	checkRange(start, stop, 32)
	if stop-start <= 16 {
		return uint32(RangeU16(m, start, stop))
	}
	return uint32(RangeU16(m, start, start+16)) | uint32(RangeU16(m, start+16, stop))<<16
}

// RangeU64 packs slots [start, stop) into a uint64. stop-start must not exceed 64.
func RangeU64[S constraints.Integer](m ports.Measured[S], start, stop int) uint64 {
	checkRange(start, stop, 64)
	if stop-start <= 32 {
		return uint64(RangeU32(m, start, stop))
	}
	return uint64(RangeU32(m, start, start+32)) | uint64(RangeU32(m, start+32, stop))<<32
}

// Reader bundles the range reads for one buffer.
type Reader[S constraints.Integer] struct {
	m ports.Measured[S]
}

// Read returns a Reader over m.
func Read[S constraints.Integer](m ports.Measured[S]) Reader[S] {
	return Reader[S]{m: m}
}

func (r Reader[S]) Get(slot S) bool { return r.m.Get(slot) }
func (r Reader[S]) U8(start, stop int) uint8 { return RangeU8(r.m, start, stop) }
func (r Reader[S]) U16(start, stop int) uint16 { return RangeU16(r.m, start, stop) }
func (r Reader[S]) U32(start, stop int) uint32 { return RangeU32(r.m, start, stop) }
func (r Reader[S]) U64(start, stop int) uint64 { return RangeU64(r.m, start, stop) }

// Bits renders slots [start, stop) as a string of '0' and '1', slot start first.
func (r Reader[S]) Bits(start, stop int) string {
	if start < 0 || start > stop {
		panic(fmt.Sprintf("%s [%d, %d)", invalidRange, start, stop))
	}
	out := make([]byte, 0, stop-start)
	for i := start; i < stop; i++ {
		if r.m.Get(S(i)) {
			out = append(out, '1')
		} else {
			out = append(out, '0')
		}
	}
	return string(out)
}
