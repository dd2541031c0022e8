/*
Package transform provides layers that wrap another Layer and expose the same
contract upward.

  - Convert remaps outer qubit and slot addresses onto the inner layer's
    addresses. NewSerialization folds a two-dimensional grid into linear indices.
  - Inject replaces Send, Receive and SendReceive with user hooks and re-tags
    the operation type as Tagged.
  - Inspect replaces the same calls with hooks but keeps the inner operation
    type; it is the building block for logging, metrics and fault injection.

Every wrapper reports the capabilities of the layer it wraps, so a wrapper
supports a gate family exactly when its inner layer does. Wrappers add no
concurrency and no dispatch of their own.
*/
package transform
