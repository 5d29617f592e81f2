// Package storage implements the key-value façade on top of a
// backend.Adapter.
//
// Values are stored as text. Strings are written unchanged, everything else
// is written as JSON, and stored JSON arrays and objects are decoded again
// on read (see package value). On top of plain entries the package offers
// two higher level operations:
//
//   - Insert merges a value into the stored one: strings concatenate,
//     records union, arrays append, see Merge.
//   - Find, Update and Remove treat a stored JSON array as a collection of
//     records identified by their "id" field.
//
// Every operation returns a *future.Future. Under an immediate adapter it
// is already completed, under a suspended adapter it completes once the
// backend worker has run the queued calls. The first backend call of an
// operation is queued before the method returns, so a Get issued right after
// an unawaited Create sees the created value. Invalid arguments are reported
// through an already rejected future before the backend is touched.
//
// Errors are of type *Error and carry a RetCode, use errors.Is with
// ErrInvalidArgument, ErrTypeMismatch, ErrInvalidKey or ErrBackendFailure.
// Absent keys are never an error.
//
// Concurrency:
//
//	Insert, Update and Remove read the stored value, change it and write it
//	back without locking. The write is queued only after the read completed.
//	Two concurrent calls on the same key may race and one of the updates can
//	be lost, and a call issued later without awaiting may be applied before
//	that write. Callers that need stronger guarantees must await these
//	operations or serialize access to a key themselves.
//
// Usage Example:
//
//	adapter, _ := factory.New("memory", backend.ModeImmediate, "")
//	s := storage.New(adapter, storage.DefaultOptions())
//
//	s.Create("users", []map[string]any{{"id": 1, "name": "A", "password": "secret"}}).Await()
//	s.Update("users", map[string]any{}, map[string]any{"id": 1, "name": "B"}).Await()
//
//	user, err := s.Find("users", map[string]any{"id": 1}).Await()
//
// Operation counts, error counts and durations are exported through
// github.com/VictoriaMetrics/metrics.
package storage
