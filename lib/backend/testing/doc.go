// Package testing provides standardised tests and benchmarks for backends
// that satisfy backend.IBackend or backend.IAsyncBackend.
//
// Both suites drive the backend through a backend.Adapter, so the same
// cases validate immediate backends and their suspended (async) wrappers.
//
// Example usage:
//
//	factory := func() *backend.Adapter {
//		return backend.NewImmediate(NewMyBackend())
//	}
//
//	// Running the standard test suite
//	backendtesting.RunBackendTests(t, "MyBackend", factory)
//
//	// Running performance benchmarks
//	backendtesting.RunBackendBenchmarks(b, "MyBackend", factory)
package testing
