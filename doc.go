/*
Package lay dispatches batches of quantum operations to interchangeable
backends through a stack of composable layers.

A backend implements ports.Layer. Programs are built with a dsl.OpsVec,
which refuses gates the target layer cannot execute, and results are read
from the buffer with the helpers in package measured. Layers in package
transform change how a backend is addressed (Convert) or intercept its calls
(Inspect, Inject) without touching the backend itself.

# Usage

	backend := sim.New(2)
	s := lay.NewSession(backend, lay.WithLogger(logger))

	buf, err := lay.Run(s, func(v *dsl.OpsVec[int, int, sim.Op]) {
		v.Initialize().X(0).CX(0, 1).Measure(0, 0).Measure(1, 1)
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(measured.Read[int](buf).Bits(0, 2)) // "11"

Session adds structured logging, optional Prometheus metrics and trace
recording around the backend. RunProgram does the same for program files
loaded with package program.
*/
package lay
