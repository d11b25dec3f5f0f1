// Package runtime defines the ABI between this Lambda custom runtime core
// and user code: one synchronous function linked into the bootstrap
// binary at build time. The runtime performs no dynamic handler lookup;
// which Handler a given bootstrap binary runs is a compile-time decision
// made by whichever main package imports it (see cmd/bootstrap and the
// fixtures under examples/handlers).
package runtime

import "context"

// Handler is the contract imposed on user code: given the request id of
// the current invocation and the raw event body delivered by the Runtime
// API, produce the bytes to post back as the response.
//
// Implementations must be synchronous and single-threaded from the
// runtime's point of view — the bootstrap loop calls Handler directly on
// its own goroutine and never hops to another one. A returned error is
// reported to the Runtime API's invocation-error endpoint; it does not
// terminate the process.
type Handler func(ctx context.Context, requestID string, body []byte) ([]byte, error)
