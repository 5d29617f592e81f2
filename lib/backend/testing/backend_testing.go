package testing

import (
	"fmt"
	"github.com/ValentinKolb/kvfacade/lib/backend"
	"slices"
	"sync"
	"testing"
)

// AdapterFactory creates a new, empty adapter around the backend under test
type AdapterFactory func() *backend.Adapter

// RunBackendTests runs a comprehensive test suite against a backend wrapped
// in an adapter. The same suite is used for immediate and suspended backends.
func RunBackendTests(t *testing.T, name string, factory AdapterFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Missing", func(t *testing.T) {
			testMissing(t, factory())
		})

		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, factory())
		})

		t.Run("EmptyValue", func(t *testing.T) {
			testEmptyValue(t, factory())
		})

		t.Run("Remove", func(t *testing.T) {
			testRemove(t, factory())
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory())
		})

		t.Run("Keys", func(t *testing.T) {
			testKeys(t, factory())
		})

		t.Run("Unicode", func(t *testing.T) {
			testUnicode(t, factory())
		})

		t.Run("Concurrent", func(t *testing.T) {
			testConcurrent(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// mustGet awaits a Get and fails the test on error
func mustGet(t testing.TB, a *backend.Adapter, key string) backend.Lookup {
	t.Helper()
	lookup, err := a.Get(key).Await()
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return lookup
}

// mustSet awaits a Set and fails the test on error
func mustSet(t testing.TB, a *backend.Adapter, key, value string) {
	t.Helper()
	if _, err := a.Set(key, value).Await(); err != nil {
		t.Fatalf("Set(%q) failed: %v", key, err)
	}
}

func mustKeys(t testing.TB, a *backend.Adapter) []string {
	t.Helper()
	keys, err := a.Keys().Await()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	return keys
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, a *backend.Adapter) {
	defer a.Close()

	mustSet(t, a, "test-key", "test-value")

	lookup := mustGet(t, a, "test-key")
	if !lookup.Loaded {
		t.Errorf("Expected key to exist after Set")
	}
	if lookup.Value != "test-value" {
		t.Errorf("Expected value %q, got %q", "test-value", lookup.Value)
	}
}

func testMissing(t *testing.T, a *backend.Adapter) {
	defer a.Close()

	lookup := mustGet(t, a, "nonexistent-key")
	if lookup.Loaded {
		t.Errorf("Expected nonexistent key to return Loaded=false")
	}
	if lookup.Value != "" {
		t.Errorf("Expected empty value for nonexistent key, got %q", lookup.Value)
	}
}

func testOverwrite(t *testing.T, a *backend.Adapter) {
	defer a.Close()

	mustSet(t, a, "test-key", "first")
	mustSet(t, a, "test-key", "second")

	if lookup := mustGet(t, a, "test-key"); lookup.Value != "second" {
		t.Errorf("Expected overwritten value %q, got %q", "second", lookup.Value)
	}

	if keys := mustKeys(t, a); len(keys) != 1 {
		t.Errorf("Expected exactly one key after overwrite, got %v", keys)
	}
}

func testEmptyValue(t *testing.T, a *backend.Adapter) {
	defer a.Close()

	mustSet(t, a, "empty", "")

	lookup := mustGet(t, a, "empty")
	if !lookup.Loaded {
		t.Errorf("Expected key holding an empty string to exist")
	}
	if lookup.Value != "" {
		t.Errorf("Expected empty value, got %q", lookup.Value)
	}
}

func testRemove(t *testing.T, a *backend.Adapter) {
	defer a.Close()

	mustSet(t, a, "test-key", "test-value")

	if _, err := a.Remove("test-key").Await(); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if mustGet(t, a, "test-key").Loaded {
		t.Errorf("Expected key to be gone after Remove")
	}

	// removing an absent key is not an error
	if _, err := a.Remove("test-key").Await(); err != nil {
		t.Errorf("Remove of an absent key failed: %v", err)
	}
}

func testClear(t *testing.T, a *backend.Adapter) {
	defer a.Close()

	for i := 0; i < 10; i++ {
		mustSet(t, a, fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i))
	}

	if _, err := a.Clear().Await(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if keys := mustKeys(t, a); len(keys) != 0 {
		t.Errorf("Expected no keys after Clear, got %v", keys)
	}

	// clearing an empty backend is fine as well
	if _, err := a.Clear().Await(); err != nil {
		t.Errorf("Second Clear failed: %v", err)
	}

	// the backend stays usable
	mustSet(t, a, "after", "clear")
	if !mustGet(t, a, "after").Loaded {
		t.Errorf("Expected backend to accept writes after Clear")
	}
}

func testKeys(t *testing.T, a *backend.Adapter) {
	defer a.Close()

	if keys := mustKeys(t, a); len(keys) != 0 {
		t.Errorf("Expected no keys on a new backend, got %v", keys)
	}

	expected := []string{"alpha", "bravo", "charlie", "delta"}
	for _, key := range []string{"charlie", "alpha", "delta", "bravo"} {
		mustSet(t, a, key, key)
	}

	first := mustKeys(t, a)
	if !slices.Equal(first, expected) {
		t.Errorf("Expected keys %v, got %v", expected, first)
	}

	second := mustKeys(t, a)
	if !slices.Equal(first, second) {
		t.Errorf("Expected stable key order, got %v then %v", first, second)
	}
}

func testUnicode(t *testing.T, a *backend.Adapter) {
	defer a.Close()

	cases := map[string]string{
		"ключ":      "значение",
		"键":         "值 🎉",
		"space key": "line\nbreak\ttab",
		"quotes":    `{"a":"b"}`,
	}

	for key, value := range cases {
		mustSet(t, a, key, value)
	}
	for key, value := range cases {
		lookup := mustGet(t, a, key)
		if !lookup.Loaded || lookup.Value != value {
			t.Errorf("Key %q: expected %q, got (%q, %v)", key, value, lookup.Value, lookup.Loaded)
		}
	}
}

func testConcurrent(t *testing.T, a *backend.Adapter) {
	defer a.Close()

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("worker-%d-key-%d", w, i)
				if _, err := a.Set(key, key).Await(); err != nil {
					errs <- err
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent Set failed: %v", err)
	}

	if keys := mustKeys(t, a); len(keys) != workers*perWorker {
		t.Errorf("Expected %d keys, got %d", workers*perWorker, len(keys))
	}

	for w := 0; w < workers; w++ {
		key := fmt.Sprintf("worker-%d-key-%d", w, perWorker-1)
		if lookup := mustGet(t, a, key); lookup.Value != key {
			t.Errorf("Expected %q for %q, got %q", key, key, lookup.Value)
		}
	}
}

func testInfo(t *testing.T, a *backend.Adapter) {
	defer a.Close()

	info := a.Info()
	if info.Name == "" {
		t.Errorf("Expected backend to report a name")
	}
	if info.Mode != a.Mode() {
		t.Errorf("Expected info mode %s, got %s", a.Mode(), info.Mode)
	}
}
