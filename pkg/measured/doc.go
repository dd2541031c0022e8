/*
Package measured reads classical results out of a layer's buffer.

Every backend buffer implements ports.Measured, which answers a single slot.
This package builds wider unsigned integers from those single-bit reads:
slot start+i lands in bit i of the result, least significant first. Widths
above eight bits are assembled by splitting the range into two halves of half
the width and packing the high half above the low one.

A range whose start exceeds its stop, or which is wider than the requested
integer, is a caller bug and panics.
*/
package measured
