// Package future provides the single-shot asynchronous result used by every
// storage operation.
//
// A Future has one producer and any number of waiters. It is completed exactly
// once, with a value or an error, and there is no cancellation: AwaitContext
// only bounds how long the caller waits.
//
// Usage Example:
//
//	f := future.Go(func() (string, error) {
//		return backend.Get("key")
//	})
//
//	value, err := f.Await()
package future
