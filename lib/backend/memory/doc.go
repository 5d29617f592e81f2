// Package memory implements an immediate, in-process backend.IBackend.
//
// Entries live in a sharded concurrent map (xsync.MapOf) and are lost when
// the process exits. It is the backend used by tests and the natural
// counterpart of a browser's localStorage.
//
// Usage Example:
//
//	adapter := backend.NewImmediate(memory.NewMemoryBackend())
//	s := storage.New(adapter, storage.DefaultOptions())
package memory
