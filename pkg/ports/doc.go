/*
Package ports defines the contract between client code and a computation
backend.

A backend (hardware driver or simulator) implements Layer. Transform layers
wrap a Layer and implement the same contract, so wrappers stack arbitrarily
deep. Client code never depends on a concrete backend.

# Key Interfaces

  - Layer: send a batch of operations and receive measured results into a Buffer.
  - Measured: read single classical results out of a Buffer by slot.
  - Converter: a pure address mapping used by remapping layers.
  - TraceStore: persistence for dispatched batches (used by the recorder layer).
*/
package ports
