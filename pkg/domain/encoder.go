package domain

// Encoder is the set of constructors a layer exposes so that builders can
// produce its Operation representation Op from addresses Q and S.
//
// Wrapping layers derive their encoder from the inner one, e.g. by remapping
// addresses before delegating.
type Encoder[Q, S, Op any] struct {
	Initialize func() Op
	Measure    func(q Q, s S) Op
	// Gate builds any one-qubit builtin (x, y, z, h, s, sdg, t, tdg).
	Gate func(code Opcode, q Q) Op
	// Gate2 builds any two-qubit builtin (cx).
	Gate2 func(code Opcode, c, t Q) Op
}

// Encode returns the encoder for the reference Operation representation.
func Encode[Q, S comparable]() Encoder[Q, S, Operation[Q, S]] {
	return Encoder[Q, S, Operation[Q, S]]{
		Initialize: Initialize[Q, S],
		Measure:    Measure[Q, S],
		Gate:       Gate[Q, S],
		Gate2:      Gate2[Q, S],
	}
}
