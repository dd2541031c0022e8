// Package sim is a reference backend that simulates qubits restricted to
// computational basis states. It executes initialize, measure, the Pauli,
// S, T and CX families, and one extension (OpFlip).
package sim
