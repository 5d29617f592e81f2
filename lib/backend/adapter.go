package backend

import (
	"github.com/ValentinKolb/kvfacade/lib/future"
)

// Adapter presents an immediate or a suspended backend through one
// future-returning capability set, so callers are written once for both.
//
// Under an immediate backend the returned futures are already completed when
// a method returns. Under a suspended backend they complete asynchronously.
type Adapter struct {
	mode      Mode
	immediate IBackend
	suspended IAsyncBackend
}

// NewImmediate creates an adapter for an immediate backend.
func NewImmediate(b IBackend) *Adapter {
	return &Adapter{mode: ModeImmediate, immediate: b}
}

// NewSuspended creates an adapter for a suspended backend.
func NewSuspended(b IAsyncBackend) *Adapter {
	return &Adapter{mode: ModeSuspended, suspended: b}
}

// --------------------------------------------------------------------------
// Capability Set
// --------------------------------------------------------------------------

// Mode returns the execution mode of the wrapped backend.
func (a *Adapter) Mode() Mode {
	return a.mode
}

func (a *Adapter) Get(key string) *future.Future[Lookup] {
	if a.mode == ModeSuspended {
		return a.suspended.Get(key)
	}
	value, loaded, err := a.immediate.Get(key)
	if err != nil {
		return future.Rejected[Lookup](err)
	}
	return future.Resolved(Lookup{Value: value, Loaded: loaded})
}

func (a *Adapter) Set(key string, value string) *future.Future[bool] {
	if a.mode == ModeSuspended {
		return a.suspended.Set(key, value)
	}
	return settle(a.immediate.Set(key, value))
}

func (a *Adapter) Remove(key string) *future.Future[bool] {
	if a.mode == ModeSuspended {
		return a.suspended.Remove(key)
	}
	return settle(a.immediate.Remove(key))
}

func (a *Adapter) Clear() *future.Future[bool] {
	if a.mode == ModeSuspended {
		return a.suspended.Clear()
	}
	return settle(a.immediate.Clear())
}

func (a *Adapter) Keys() *future.Future[[]string] {
	if a.mode == ModeSuspended {
		return a.suspended.Keys()
	}
	keys, err := a.immediate.Keys()
	if err != nil {
		return future.Rejected[[]string](err)
	}
	return future.Resolved(keys)
}

// Info returns metadata about the wrapped backend.
func (a *Adapter) Info() Info {
	var info Info
	if a.mode == ModeSuspended {
		info = a.suspended.Info()
	} else {
		info = a.immediate.Info()
	}
	info.Mode = a.mode
	return info
}

// Close closes the wrapped backend.
func (a *Adapter) Close() error {
	if a.mode == ModeSuspended {
		return a.suspended.Close()
	}
	return a.immediate.Close()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func settle(err error) *future.Future[bool] {
	if err != nil {
		return future.Rejected[bool](err)
	}
	return future.Resolved(true)
}
