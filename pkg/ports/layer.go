package ports

import "github.com/aretw0/lay/pkg/domain"

// Layer sends operations to a backend and receives measured results.
//
// The type parameters tie together the address domain (Q, S), the operation
// representation Op, the buffer type B, and the result types of Send (Req)
// and Receive/SendReceive (Resp). Whether a batch failed is expressed in Req
// and Resp; the contract itself has no error path.
//
// A Layer is used by one goroutine at a time.
type Layer[Q, S, Op any, B Measured[S], Req, Resp any] interface {
	// Send dispatches ops in order. The backend has accepted them once Send returns.
	Send(ops []Op) Req

	// Receive fills buf with the results of the previous dispatch.
	Receive(buf B) Resp

	// SendReceive is Send immediately followed by Receive. Implementations
	// without a cheaper combined path use SendThenReceive.
	SendReceive(ops []Op, buf B) Resp

	// MakeBuffer creates a buffer that only this layer may fill.
	MakeBuffer() B

	// Encoder returns the constructors for this layer's operation representation.
	Encoder() domain.Encoder[Q, S, Op]

	// Capabilities reports the gate families this layer implements.
	Capabilities() domain.Capabilities
}

// Sender is the send half of a Layer.
type Sender[Op, Req any] interface {
	Send(ops []Op) Req
}

// Receiver is the receive half of a Layer.
type Receiver[B, Resp any] interface {
	Receive(buf B) Resp
}

// SendThenReceive is the default SendReceive: Send, discard its result, then Receive.
func SendThenReceive[Op, B, Req, Resp any](l interface {
	Sender[Op, Req]
	Receiver[B, Resp]
}, ops []Op, buf B) Resp {
	l.Send(ops)
	return l.Receive(buf)
}
