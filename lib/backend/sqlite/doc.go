// Package sqlite implements an immediate backend.IBackend on top of SQLite
// (github.com/mattn/go-sqlite3, requires cgo).
//
// All entries live in one table keyed by the entry key. File databases run
// in WAL mode; the path ":memory:" opens a private in-memory database that
// is pinned to a single connection.
package sqlite
