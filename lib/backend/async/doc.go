// Package async turns any immediate backend.IBackend into a suspended
// backend.IAsyncBackend, the execution model of a mobile AsyncStorage.
//
// Implementation Details:
//
//   - Every call packs its operation into a closure and pushes it onto a
//     lock-free multi-producer single-consumer queue (util.Queue). The call
//     returns a pending future.Future right away.
//   - A single worker goroutine drains the queue and runs the operations
//     against the wrapped backend one after another, completing each future
//     with the result or the error.
//   - Operations issued by one goroutine execute in issue order. There is no
//     cancellation: once queued, an operation runs and its future completes
//     exactly once.
//   - Close rejects new operations with backend.ErrClosed, drains the queue
//     and then closes the wrapped backend.
//
// Usage Example:
//
//	b := async.NewAsyncBackend(memory.NewMemoryBackend())
//	if _, err := b.Set("key", "value").Await(); err != nil {
//		// handle error
//	}
package async
