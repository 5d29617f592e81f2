// Package badger implements an immediate backend.IBackend on top of
// BadgerDB (github.com/dgraph-io/badger/v4), an embedded LSM key-value store.
//
// Every entry is one BadgerDB key holding the stored string. Persistent
// databases run a background value log garbage collector (see
// Config.GCInterval) that is stopped by Close. InMemoryConfig opens a
// database without disk I/O, which is what the tests use.
//
// BadgerDB's own log output is routed through the package Logger so it
// follows the configured log level.
package badger
