package future

import (
	"context"
	"sync"
)

// Future is the result of a single-shot computation. It is completed
// exactly once, either with a value or with an error. Waiting on a Future
// never cancels the computation behind it.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// New creates a pending future. The producer completes it with Complete.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future that is already completed with v.
func Resolved[T any](v T) *Future[T] {
	f := New[T]()
	f.Complete(v, nil)
	return f
}

// Rejected returns a future that is already completed with err.
func Rejected[T any](err error) *Future[T] {
	var zero T
	f := New[T]()
	f.Complete(zero, err)
	return f
}

// Go runs fn on a new goroutine and returns a future for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := New[T]()
	go func() {
		f.Complete(fn())
	}()
	return f
}

// Complete settles the future. Only the first call has an effect, the
// return value reports whether this call was the one that settled it.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (f *Future[T]) Complete(v T, err error) bool {
	settled := false
	f.once.Do(func() {
		f.value = v
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

// Done returns a channel that is closed once the future is completed.
// This allows the future to be used in select statements.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsDone reports whether the future is completed, without blocking.
func (f *Future[T]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future is completed and returns its result.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.value, f.err
}

// AwaitContext is like Await but stops waiting when ctx is done. The
// computation itself keeps running and still completes the future.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// --------------------------------------------------------------------------
// Continuations
// --------------------------------------------------------------------------

// Chain continues f with fn once f is completed and returns a future for the
// future fn returns. fn receives the result of f, including its error.
//
// If f is already completed, fn runs on the caller's goroutine before Chain
// returns. Otherwise fn runs on a new goroutine as soon as f completes.
func Chain[T, U any](f *Future[T], fn func(T, error) *Future[U]) *Future[U] {
	if f.IsDone() {
		return fn(f.value, f.err)
	}

	out := New[U]()
	go func() {
		out.Complete(fn(f.Await()).Await())
	}()
	return out
}

// Then is like Chain for a continuation that returns a plain result.
func Then[T, U any](f *Future[T], fn func(T, error) (U, error)) *Future[U] {
	return Chain(f, func(v T, err error) *Future[U] {
		u, err := fn(v, err)
		if err != nil {
			return Rejected[U](err)
		}
		return Resolved(u)
	})
}
