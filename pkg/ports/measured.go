package ports

// Measured reads classical measurement results by slot.
//
// Implementations must always answer: a slot with no valid result reads as false.
type Measured[S any] interface {
	Get(slot S) bool
}

// Converter maps outer addresses onto the addresses of an inner layer.
// Both functions must be total and deterministic. They need not be
// injective; avoiding unintended collisions is up to the caller.
type Converter[QOuter, QInner, SOuter, SInner any] interface {
	Qubit(q QOuter) QInner
	Slot(s SOuter) SInner
}

// ConverterFuncs adapts a pair of functions to the Converter interface.
type ConverterFuncs[QOuter, QInner, SOuter, SInner any] struct {
	QubitFunc func(QOuter) QInner
	SlotFunc  func(SOuter) SInner
}

func (c ConverterFuncs[QOuter, QInner, SOuter, SInner]) Qubit(q QOuter) QInner {
	return c.QubitFunc(q)
}

func (c ConverterFuncs[QOuter, QInner, SOuter, SInner]) Slot(s SOuter) SInner {
	return c.SlotFunc(s)
}
