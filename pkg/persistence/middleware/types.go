// Package middleware wraps a ports.TraceStore with storage-side behavior
// such as encryption at rest and redaction of operation text.
package middleware

import "github.com/aretw0/lay/pkg/ports"

// Middleware allows wrapping a TraceStore to add behavior.
type Middleware func(ports.TraceStore) ports.TraceStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.TraceStore, mws ...Middleware) ports.TraceStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
