package measured_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/aretw0/lay/pkg/measured"
	"github.com/stretchr/testify/assert"
)

// pattern is a Measured whose slot i reads bit i of a fixed word.
type pattern uint64

func (p pattern) Get(slot int) bool {
	if slot < 0 || slot >= 64 {
		return false
	}
	return p&(1<<slot) != 0
}

// counting records how many single-bit reads were made.
type counting struct {
	src   pattern
	reads int
}

func (c *counting) Get(slot int) bool {
	c.reads++
	return c.src.Get(slot)
}

// packed builds the expected value one bit at a time.
func packed(p pattern, start, stop int) uint64 {
	var v uint64
	for i := 0; i < stop-start; i++ {
		if p.Get(start + i) {
			v |= 1 << i
		}
	}
	return v
}

func TestRangeU8_CompositionLaw(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for n := 0; n < 200; n++ {
		p := pattern(rng.Uint64())
		start := rng.IntN(56)
		stop := start + rng.IntN(9)
		got := measured.RangeU8[int](p, start, stop)
		assert.Equal(t, packed(p, start, stop), uint64(got), "[%d,%d) of %x", start, stop, uint64(p))
	}
}

func TestRanges_CompositionLaw(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for n := 0; n < 200; n++ {
		p := pattern(rng.Uint64())

		start := rng.IntN(48)
		stop := start + rng.IntN(17)
		assert.Equal(t, packed(p, start, stop), uint64(measured.RangeU16[int](p, start, stop)))

		start = rng.IntN(32)
		stop = start + rng.IntN(33)
		assert.Equal(t, packed(p, start, stop), uint64(measured.RangeU32[int](p, start, stop)))

		stop = rng.IntN(65)
		assert.Equal(t, packed(p, 0, stop), measured.RangeU64[int](p, 0, stop))
	}
}

func TestRanges_HalvesPackLowFirst(t *testing.T) {
	// low byte 0xAB, high byte 0xCD
	p := pattern(0xCDAB)
	assert.Equal(t, uint16(0xCDAB), measured.RangeU16[int](p, 0, 16))
	assert.Equal(t, uint16(0x0DAB), measured.RangeU16[int](p, 0, 12))
	assert.Equal(t, uint8(0xAB), measured.RangeU8[int](p, 0, 8))
	assert.Equal(t, uint8(0xCD), measured.RangeU8[int](p, 8, 16))

	full := pattern(0x0123456789ABCDEF)
	assert.Equal(t, uint64(0x0123456789ABCDEF), measured.RangeU64[int](full, 0, 64))
	assert.Equal(t, uint32(0x89ABCDEF), measured.RangeU32[int](full, 0, 32))
	assert.Equal(t, uint32(0x01234567), measured.RangeU32[int](full, 32, 64))
}

func TestRanges_ReadEachSlotOnce(t *testing.T) {
	c := &counting{src: pattern(0xFFFF_FFFF_FFFF_FFFF)}
	measured.RangeU64[int](c, 3, 60)
	assert.Equal(t, 57, c.reads)
}

func TestRanges_EmptyRange(t *testing.T) {
	p := pattern(0xFF)
	assert.Zero(t, measured.RangeU8[int](p, 4, 4))
	assert.Zero(t, measured.RangeU64[int](p, 0, 0))
}

func TestRanges_InvalidRangePanics(t *testing.T) {
	p := pattern(0)
	assert.Panics(t, func() { measured.RangeU8[int](p, 5, 4) })
	assert.Panics(t, func() { measured.RangeU8[int](p, 0, 9) })
	assert.Panics(t, func() { measured.RangeU16[int](p, 0, 17) })
	assert.Panics(t, func() { measured.RangeU32[int](p, 10, 43) })
	assert.Panics(t, func() { measured.RangeU64[int](p, 0, 65) })
	assert.Panics(t, func() { measured.RangeU64[int](p, -1, 3) })
	assert.NotPanics(t, func() { measured.RangeU64[int](p, 0, 64) })
}

func TestReader(t *testing.T) {
	r := measured.Read[int](pattern(0b1011_0110))
	assert.False(t, r.Get(0))
	assert.True(t, r.Get(1))
	assert.Equal(t, uint8(0b0110), r.U8(0, 4))
	assert.Equal(t, uint16(0b1011_0110), r.U16(0, 16))
	assert.Equal(t, uint32(0b1011), r.U32(4, 8))
	assert.Equal(t, uint64(0b1011_0110), r.U64(0, 64))
	assert.Equal(t, "01101101", r.Bits(0, 8))
}

func TestOutcome_FailureReadsZero(t *testing.T) {
	failed := measured.Fallible[int](pattern(0xFFFF_FFFF_FFFF_FFFF), errors.New("backend lost"))
	assert.False(t, failed.OK())
	for slot := 0; slot < 64; slot++ {
		assert.False(t, failed.Get(slot))
	}
	assert.Zero(t, measured.RangeU8[int](failed, 0, 8))
	assert.Zero(t, measured.RangeU16[int](failed, 0, 16))
	assert.Zero(t, measured.RangeU32[int](failed, 0, 32))
	assert.Zero(t, measured.RangeU64[int](failed, 0, 64))

	empty := measured.Failed[int](errors.New("no result"))
	assert.False(t, empty.Get(0))
	assert.Zero(t, measured.RangeU64[int](empty, 0, 64))
}

func TestOutcome_SuccessDelegates(t *testing.T) {
	ok := measured.Fallible[int](pattern(0b101), nil)
	assert.True(t, ok.OK())
	assert.True(t, ok.Get(0))
	assert.False(t, ok.Get(1))
	assert.Equal(t, uint8(0b101), measured.RangeU8[int](ok, 0, 3))
}

func TestBits(t *testing.T) {
	b := measured.NewBits(2)
	assert.Equal(t, 2, b.Len())
	assert.False(t, b.Get(5))

	b.Set(5, true)
	assert.Equal(t, 6, b.Len())
	assert.True(t, b.Get(5))
	assert.False(t, b.Get(-1))

	b.Reset()
	assert.False(t, b.Get(5))

	b.CopyFrom([]bool{true, false, true})
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, uint8(0b101), measured.RangeU8[int](b, 0, 3))
	assert.Equal(t, "101", b.String())
}
