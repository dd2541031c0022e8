/*
Package observability provides middlewares that monitor dispatch calls.

Instrument records Prometheus metrics for every Send, Receive and SendReceive
passing through a layer. Logged writes one structured log record per call.
Both are ordinary transform middlewares and can be combined with Chain.
*/
package observability
