// Package factory selects a backend by name and wraps it in a
// backend.Adapter for the requested execution mode.
package factory
