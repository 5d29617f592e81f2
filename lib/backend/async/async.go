package async

import (
	"github.com/ValentinKolb/kvfacade/lib/backend"
	"github.com/ValentinKolb/kvfacade/lib/future"
	"github.com/ValentinKolb/kvfacade/lib/util"
	"sync"
)

// asyncImpl runs every operation of the wrapped backend on one worker
// goroutine and hands the caller a future for the result.
type asyncImpl struct {
	backend backend.IBackend
	queue   *util.Queue[func()]
	done    chan struct{}

	// guards closed, pushes hold the read lock so Close cannot race with them
	mu     sync.RWMutex
	closed bool
}

// NewAsyncBackend wraps an immediate backend into a suspended one.
// The returned backend owns b and closes it in Close.
func NewAsyncBackend(b backend.IBackend) backend.IAsyncBackend {
	a := &asyncImpl{
		backend: b,
		queue:   util.NewQueue[func()](),
		done:    make(chan struct{}),
	}
	go a.worker()
	return a
}

// worker executes queued operations one at a time, in queue order
func (a *asyncImpl) worker() {
	defer close(a.done)
	for op := range a.queue.Recv() {
		op()
	}
}

// submit queues fn and returns a future for its result.
// It is a function and not a method because methods can't have type parameters.
func submit[T any](a *asyncImpl, fn func() (T, error)) *future.Future[T] {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return future.Rejected[T](backend.ErrClosed)
	}

	f := future.New[T]()
	if !a.queue.Push(func() { f.Complete(fn()) }) {
		return future.Rejected[T](backend.ErrClosed)
	}
	return f
}

// --------------------------------------------------------------------------
// Interface Methods (docu see backend/interface.go)
// --------------------------------------------------------------------------

func (a *asyncImpl) Get(key string) *future.Future[backend.Lookup] {
	return submit(a, func() (backend.Lookup, error) {
		value, loaded, err := a.backend.Get(key)
		return backend.Lookup{Value: value, Loaded: loaded}, err
	})
}

func (a *asyncImpl) Set(key string, value string) *future.Future[bool] {
	return submit(a, func() (bool, error) {
		if err := a.backend.Set(key, value); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (a *asyncImpl) Remove(key string) *future.Future[bool] {
	return submit(a, func() (bool, error) {
		if err := a.backend.Remove(key); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (a *asyncImpl) Clear() *future.Future[bool] {
	return submit(a, func() (bool, error) {
		if err := a.backend.Clear(); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (a *asyncImpl) Keys() *future.Future[[]string] {
	return submit(a, a.backend.Keys)
}

func (a *asyncImpl) Info() backend.Info {
	info := a.backend.Info()
	info.Mode = backend.ModeSuspended
	return info
}

// Close stops accepting operations, waits until every queued operation has
// completed and then closes the wrapped backend.
func (a *asyncImpl) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.queue.Close()
	a.mu.Unlock()

	<-a.done

	backend.Logger.Debugf("async backend (%s) drained and closed", a.backend.Info().Name)
	return a.backend.Close()
}
