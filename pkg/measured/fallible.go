package measured

import "github.com/aretw0/lay/pkg/ports"

// Outcome is a Measured view over a result that may carry a failure.
// When Err is set, or no buffer was produced, every slot reads as false and
// every range as zero, so downstream code can treat "no result" as "all zero
// bits" without special-casing.
type Outcome[S any] struct {
	Buffer ports.Measured[S]
	Err    error
}

// Fallible pairs a buffer with the error of the call that filled it.
func Fallible[S any](m ports.Measured[S], err error) Outcome[S] {
	return Outcome[S]{Buffer: m, Err: err}
}

// Failed returns an outcome that carries only a failure.
func Failed[S any](err error) Outcome[S] {
	return Outcome[S]{Err: err}
}

func (o Outcome[S]) Get(slot S) bool {
	if o.Err != nil || o.Buffer == nil {
		return false
	}
	return o.Buffer.Get(slot)
}

// OK reports whether the outcome holds a usable buffer.
func (o Outcome[S]) OK() bool {
	return o.Err == nil && o.Buffer != nil
}
