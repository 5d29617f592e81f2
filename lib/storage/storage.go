package storage

import (
	"github.com/ValentinKolb/kvfacade/lib/backend"
	"github.com/ValentinKolb/kvfacade/lib/future"
	"github.com/ValentinKolb/kvfacade/lib/value"
	"github.com/lni/dragonboat/v4/logger"
	"time"
)

var (
	// Logger is the logger for the storage package
	Logger = logger.GetLogger("storage")
)

// Storage is the key-value façade. It adds the value codec, argument
// validation, merging and collection semantics on top of a backend adapter.
//
// Every operation returns a future. Under an immediate adapter the future is
// already completed when the method returns. Under a suspended adapter each
// operation hands its first backend call to the adapter before it returns,
// so calls issued one after another reach the backend in that order even
// when their futures are not awaited.
//
// Insert, Update and Remove are read-modify-write sequences without locking.
// Their write is issued once the read completes: concurrent calls on the
// same key may lose updates, and a later call that is not awaited may reach
// the backend before that write.
type Storage struct {
	adapter *backend.Adapter
	opts    Options
}

// New creates a Storage on top of adapter.
func New(adapter *backend.Adapter, opts Options) *Storage {
	return &Storage{
		adapter: adapter,
		opts:    opts,
	}
}

// Info returns metadata about the backend.
func (s *Storage) Info() backend.Info {
	return s.adapter.Info()
}

// Close closes the backend.
func (s *Storage) Close() error {
	return s.adapter.Close()
}

// --------------------------------------------------------------------------
// Entry CRUD
// --------------------------------------------------------------------------

// Keys returns all entry keys in the backend's order.
func (s *Storage) Keys() *future.Future[[]string] {
	return finish("keys", time.Now(), s.adapter.Keys(), func(keys []string) ([]string, error) {
		return keys, nil
	})
}

// Get returns the decoded value stored at key. An absent key resolves to nil.
func (s *Storage) Get(key string) *future.Future[any] {
	if key == "" {
		return reject[any]("get", invalidArgument("get", "key must not be empty"))
	}

	return finish("get", time.Now(), s.adapter.Get(key), func(l backend.Lookup) (any, error) {
		return decode(l), nil
	})
}

// Create stores items at key, replacing any existing entry. Non-string items
// are encoded as JSON, nil items are stored as the empty string.
func (s *Storage) Create(key string, items any) *future.Future[bool] {
	if key == "" {
		return reject[bool]("create", invalidArgument("create", "key must not be empty"))
	}
	if items == nil {
		items = ""
	}

	text, err := value.Encode(items)
	if err != nil {
		return reject[bool]("create", invalidArgument("create", "%v", err))
	}

	return finish("create", time.Now(), s.adapter.Set(key, text), done)
}

// Erase removes the entry at key. Erasing an absent key is a no-op.
func (s *Storage) Erase(key string) *future.Future[bool] {
	if key == "" {
		return reject[bool]("erase", invalidArgument("erase", "key must not be empty"))
	}

	return finish("erase", time.Now(), s.adapter.Remove(key), done)
}

// Reset removes every entry.
func (s *Storage) Reset() *future.Future[bool] {
	return finish("reset", time.Now(), s.adapter.Clear(), done)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// finish maps the result of the backend call f through fn and records op.
// A backend error is reported as BackendFailure unless it already is an *Error.
func finish[T, U any](op string, start time.Time, f *future.Future[T], fn func(T) (U, error)) *future.Future[U] {
	return future.Then(f, func(v T, err error) (U, error) {
		var u U
		if err != nil {
			err = backendFailure(op, err)
		} else {
			u, err = fn(v)
		}

		observe(op, start, err)
		if err != nil {
			Logger.Debugf("%s failed: %v", op, err)
			var zero U
			return zero, err
		}
		return u, nil
	})
}

// done is the mapping for writes that resolve to true
func done(bool) (bool, error) {
	return true, nil
}

// modify reads the value at key, passes it to fn and writes back the value
// fn returns. When fn reports no write the entry is left alone and the
// operation resolves to false.
func (s *Storage) modify(op string, key string, fn func(stored any) (next any, write bool, err error)) *future.Future[bool] {
	start := time.Now()

	f := future.Chain(s.adapter.Get(key), func(l backend.Lookup, err error) *future.Future[bool] {
		if err != nil {
			return future.Rejected[bool](err)
		}

		next, write, err := fn(decode(l))
		if err != nil {
			return future.Rejected[bool](err)
		}
		if !write {
			return future.Resolved(false)
		}

		text, err := value.Encode(next)
		if err != nil {
			return future.Rejected[bool](invalidArgument(op, "%v", err))
		}
		return s.adapter.Set(key, text)
	})

	return finish(op, start, f, func(ok bool) (bool, error) {
		return ok, nil
	})
}

// reject returns a failed future for an operation that never reached the backend
func reject[T any](op string, err *Error) *future.Future[T] {
	observe(op, time.Now(), err)
	Logger.Debugf("%s rejected: %v", op, err)
	return future.Rejected[T](err)
}

// decode returns the decoded value of a lookup, nil when nothing was loaded
func decode(l backend.Lookup) any {
	if !l.Loaded {
		return nil
	}
	return value.Decode(l.Value)
}
