package backend

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/kvfacade/lib/future"
	"github.com/lni/dragonboat/v4/logger"
	"strings"
)

var (
	Logger = logger.GetLogger("backend")
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// Mode is the execution mode of a backend.
type Mode uint8

const (
	ModeImmediate Mode = iota // every call completes before it returns
	ModeSuspended             // every call returns a future that completes later
)

func (m Mode) String() string {
	switch m {
	case ModeImmediate:
		return "immediate"
	case ModeSuspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name (immediate, suspended) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "immediate", "sync", "":
		return ModeImmediate, nil
	case "suspended", "async":
		return ModeSuspended, nil
	default:
		return ModeImmediate, fmt.Errorf("invalid mode %q (expected immediate or suspended)", s)
	}
}

// Info describes a backend instance.
type Info struct {
	Name       string `json:"name"`
	Mode       Mode   `json:"mode"`
	Persistent bool   `json:"persistent"`
	Metadata   any    `json:"metadata"`
}

// Lookup is the result of a Get: the stored string and whether it exists.
type Lookup struct {
	Value  string
	Loaded bool
}

// ErrClosed is returned by backends that were already closed.
var ErrClosed = errors.New("backend is closed")

// Factory is a function type that creates a new immediate backend.
// This is used to abstract the creation of the backend from its users.
type Factory func() (IBackend, error)

// --------------------------------------------------------------------------
// Interface Definitions
// --------------------------------------------------------------------------

// IBackend is the immediate variant of the storage capability set. Every
// method completes before it returns and reports failures as errors.
//
// Every value at rest is a string. Implementations must be safe for
// concurrent use.
type IBackend interface {
	// Get returns the value for a key. The boolean return value indicates whether a value for the key was found.
	Get(key string) (value string, loaded bool, err error)
	// Set inserts or replaces the value for a key.
	Set(key string, value string) (err error)
	// Remove deletes a key. Removing an absent key is a no-op, not an error.
	Remove(key string) (err error)
	// Clear deletes every key.
	Clear() (err error)
	// Keys returns all keys. The order is stable for a given backend state.
	Keys() (keys []string, err error)
	// Info returns metadata about the backend.
	Info() (info Info)
	// Close releases the resources held by the backend.
	Close() (err error)
}

// IAsyncBackend is the suspended variant of the storage capability set.
// Every method returns immediately with a future that completes once the
// operation has finished; failures reject the future.
type IAsyncBackend interface {
	// Get resolves to the value for a key and whether it was found.
	Get(key string) *future.Future[Lookup]
	// Set resolves once the value for a key is stored.
	Set(key string, value string) *future.Future[bool]
	// Remove resolves once the key is deleted. Removing an absent key is a no-op, not an error.
	Remove(key string) *future.Future[bool]
	// Clear resolves once every key is deleted.
	Clear() *future.Future[bool]
	// Keys resolves to all keys. The order is stable for a given backend state.
	Keys() *future.Future[[]string]
	// Info returns metadata about the backend.
	Info() (info Info)
	// Close waits for pending operations and releases the resources held by the backend.
	Close() (err error)
}
