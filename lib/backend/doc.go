// Package backend defines the minimal storage contract the façade depends on.
//
// The contract is a capability set of five operations (Get, Set, Remove,
// Clear, Keys) over string values, offered in two execution modes:
//
//   - IBackend (immediate): every call completes before it returns, like a
//     browser's localStorage.
//   - IAsyncBackend (suspended): every call returns a future.Future that
//     completes later, like a mobile AsyncStorage.
//
// Adapter wraps either variant behind one future-returning API, so code
// written against it runs unchanged on both variants. Every Adapter call is
// handed to the backend before it returns: a suspended backend therefore
// sees calls in the order they were issued.
//
// Implementations:
//
//   - memory: in-process map (github.com/ValentinKolb/kvfacade/lib/backend/memory)
//   - file: one JSON file on disk (github.com/ValentinKolb/kvfacade/lib/backend/file)
//   - sqlite: SQLite database (github.com/ValentinKolb/kvfacade/lib/backend/sqlite)
//   - badger: BadgerDB (github.com/ValentinKolb/kvfacade/lib/backend/badger)
//   - async: turns any IBackend into an IAsyncBackend (github.com/ValentinKolb/kvfacade/lib/backend/async)
//
// The factory package creates an Adapter from a backend name and a Mode, and
// the testing package holds the conformance suite every backend runs.
package backend
