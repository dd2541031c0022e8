/*
Package dsl provides OpsVec, the builder used to assemble a batch of
operations before a single Send or SendReceive call.

A builder is bound to a layer's Encoder and Capabilities. Gate methods check
the layer's gate families before appending, so a program that uses a gate the
backend lacks is rejected before anything is dispatched.

Example usage:

	sim := sim.New(1)
	ops := dsl.For(sim).
		Initialize().
		X(0).
		Measure(0, 0)

	batch, err := ops.Ops()
	if err != nil {
		return err // e.g. domain.ErrUnsupportedGate
	}
	buf := sim.MakeBuffer()
	if err := sim.SendReceive(batch, buf); err != nil {
		return err
	}
	fmt.Println(buf.Get(0)) // true
*/
package dsl
