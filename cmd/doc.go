// Package cmd implements the command-line interface of kvf. It exposes every
// operation of the key-value façade as a command, against a backend chosen
// by flags or KVF_ environment variables.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for the key-value operations (keys, get, create, erase,
//     reset, insert, update, remove, find) and the perf benchmark
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See kvf -help for a list of all commands.
package cmd
