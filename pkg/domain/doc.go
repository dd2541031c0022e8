/*
Package domain contains the core value types of the lay dispatch contract.

It defines how a single command sent to a quantum backend is encoded, which
gate families a backend may support, and the sentinel errors shared by the
rest of the module. The package is pure: it performs no I/O and holds no
backend state.

# Key Entities

  - Opcode: the stable numeric identifier of a command (INIT=1 ... CX=11, USERDEF=256).
  - Operation: an immutable tagged value whose payload shape is fixed by its opcode.
  - Capabilities: the set of gate families (Pauli, H, S, T, CX) a backend supports.
  - Encoder: the constructor set a backend exposes to build its own Operation representation.
*/
package domain
