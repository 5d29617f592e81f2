package storage

import (
	"errors"
	"github.com/ValentinKolb/kvfacade/lib/backend"
	"github.com/ValentinKolb/kvfacade/lib/backend/async"
	"github.com/ValentinKolb/kvfacade/lib/backend/memory"
	"github.com/ValentinKolb/kvfacade/lib/value"
	"reflect"
	"strconv"
	"testing"
)

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// forEachMode runs fn against a fresh memory backend in both execution modes
func forEachMode(t *testing.T, fn func(t *testing.T, s *Storage)) {
	modes := map[string]func() *backend.Adapter{
		"Immediate": func() *backend.Adapter {
			return backend.NewImmediate(memory.NewMemoryBackend())
		},
		"Suspended": func() *backend.Adapter {
			return backend.NewSuspended(async.NewAsyncBackend(memory.NewMemoryBackend()))
		},
	}

	for name, factory := range modes {
		t.Run(name, func(t *testing.T) {
			s := New(factory(), DefaultOptions())
			defer s.Close()
			fn(t, s)
		})
	}
}

func mustGet(t *testing.T, s *Storage, key string) any {
	t.Helper()
	v, err := s.Get(key).Await()
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return v
}

func mustCreate(t *testing.T, s *Storage, key string, items any) {
	t.Helper()
	if _, err := s.Create(key, items).Await(); err != nil {
		t.Fatalf("Create(%q) failed: %v", key, err)
	}
}

func mustInsert(t *testing.T, s *Storage, key string, v any) {
	t.Helper()
	if _, err := s.Insert(key, v).Await(); err != nil {
		t.Fatalf("Insert(%q) failed: %v", key, err)
	}
}

// assertValue compares got with the normalized form of want
func assertValue(t *testing.T, got, want any) {
	t.Helper()
	n, err := value.Normalize(want)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, n) {
		t.Errorf("Expected %#v, got %#v", n, got)
	}
}

// failingBackend fails every call with errBroken
type failingBackend struct{}

var errBroken = errors.New("disk on fire")

func (failingBackend) Get(string) (string, bool, error) { return "", false, errBroken }
func (failingBackend) Set(string, string) error         { return errBroken }
func (failingBackend) Remove(string) error              { return errBroken }
func (failingBackend) Clear() error                     { return errBroken }
func (failingBackend) Keys() ([]string, error)          { return nil, errBroken }
func (failingBackend) Info() backend.Info               { return backend.Info{Name: "failing"} }
func (failingBackend) Close() error                     { return nil }

// --------------------------------------------------------------------------
// Entry CRUD
// --------------------------------------------------------------------------

func TestCreateGet(t *testing.T) {
	forEachMode(t, func(t *testing.T, s *Storage) {
		mustCreate(t, s, "greeting", "hello")
		assertValue(t, mustGet(t, s, "greeting"), "hello")

		mustCreate(t, s, "record", map[string]any{"a": 1, "b": "two"})
		assertValue(t, mustGet(t, s, "record"), map[string]any{"a": 1, "b": "two"})

		// create replaces without merging
		mustCreate(t, s, "record", []int{1, 2})
		assertValue(t, mustGet(t, s, "record"), []int{1, 2})

		// nil items store the empty string
		mustCreate(t, s, "empty", nil)
		if v := mustGet(t, s, "empty"); v != "" {
			t.Errorf("Expected empty string, got %#v", v)
		}
	})
}

func TestGetAbsent(t *testing.T) {
	forEachMode(t, func(t *testing.T, s *Storage) {
		if v := mustGet(t, s, "nope"); v != nil {
			t.Errorf("Expected nil for an absent key, got %#v", v)
		}
	})
}

func TestGetPlainText(t *testing.T) {
	forEachMode(t, func(t *testing.T, s *Storage) {
		for _, text := range []string{"not json", "{broken", "123", "true", "null"} {
			mustCreate(t, s, "k", text)
			if v := mustGet(t, s, "k"); v != text {
				t.Errorf("Expected %q to decode to itself, got %#v", text, v)
			}
		}
	})
}

func TestErase(t *testing.T) {
	forEachMode(t, func(t *testing.T, s *Storage) {
		mustCreate(t, s, "k", "v")

		if _, err := s.Erase("k").Await(); err != nil {
			t.Fatalf("Erase failed: %v", err)
		}
		if v := mustGet(t, s, "k"); v != nil {
			t.Errorf("Expected key to be gone, got %#v", v)
		}

		// erasing an absent key is a no-op
		if _, err := s.Erase("k").Await(); err != nil {
			t.Errorf("Erase of an absent key failed: %v", err)
		}
	})
}

func TestResetIdempotent(t *testing.T) {
	forEachMode(t, func(t *testing.T, s *Storage) {
		mustCreate(t, s, "a", "1")
		mustCreate(t, s, "b", "2")

		for i := 0; i < 2; i++ {
			if _, err := s.Reset().Await(); err != nil {
				t.Fatalf("Reset #%d failed: %v", i+1, err)
			}
			keys, err := s.Keys().Await()
			if err != nil {
				t.Fatal(err)
			}
			if len(keys) != 0 {
				t.Errorf("Expected no keys after Reset #%d, got %v", i+1, keys)
			}
		}
	})
}

func TestKeys(t *testing.T) {
	forEachMode(t, func(t *testing.T, s *Storage) {
		mustCreate(t, s, "b", "2")
		mustCreate(t, s, "a", "1")

		keys, err := s.Keys().Await()
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(keys, []string{"a", "b"}) {
			t.Errorf("Expected [a b], got %v", keys)
		}
	})
}

func TestInvalidArguments(t *testing.T) {
	forEachMode(t, func(t *testing.T, s *Storage) {
		tests := []struct {
			name string
			err  error
		}{
			{"Get", func() error { _, err := s.Get("").Await(); return err }()},
			{"Create", func() error { _, err := s.Create("", "x").Await(); return err }()},
			{"CreateUnencodable", func() error { _, err := s.Create("k", make(chan int)).Await(); return err }()},
			{"Erase", func() error { _, err := s.Erase("").Await(); return err }()},
			{"Insert", func() error { _, err := s.Insert("", "x").Await(); return err }()},
			{"Find", func() error { _, err := s.Find("", "x").Await(); return err }()},
			{"FindParams", func() error { _, err := s.Find("k", 42).Await(); return err }()},
			{"FindNilParams", func() error { _, err := s.Find("k", nil).Await(); return err }()},
			{"Update", func() error { _, err := s.Update("", map[string]any{}, "x").Await(); return err }()},
			{"UpdateCriteria", func() error { _, err := s.Update("k", "id", map[string]any{"id": 1}).Await(); return err }()},
			{"UpdateRecord", func() error { _, err := s.Update("k", map[string]any{}, 42).Await(); return err }()},
			{"Remove", func() error { _, err := s.Remove(1, "").Await(); return err }()},
		}

		for _, tt := range tests {
			if !errors.Is(tt.err, ErrInvalidArgument) {
				t.Errorf("%s: expected ErrInvalidArgument, got %v", tt.name, tt.err)
			}
		}

		// nothing reached the backend
		if keys, _ := s.Keys().Await(); len(keys) != 0 {
			t.Errorf("Expected rejected calls to leave the backend untouched, got %v", keys)
		}
	})
}

func TestInvalidArgumentIsImmediate(t *testing.T) {
	s := New(backend.NewSuspended(async.NewAsyncBackend(memory.NewMemoryBackend())), DefaultOptions())
	defer s.Close()

	if f := s.Get(""); !f.IsDone() {
		t.Errorf("Expected validation failure to be reported before any backend call")
	}
}

func newSuspended(t *testing.T) *Storage {
	s := New(backend.NewSuspended(async.NewAsyncBackend(memory.NewMemoryBackend())), DefaultOptions())
	t.Cleanup(func() { s.Close() })
	return s
}

// A read issued right after an unawaited write must see that write.
func TestSuspendedReadAfterWrite(t *testing.T) {
	s := newSuspended(t)

	for i := 0; i < 200; i++ {
		s.Create("k", i)
		assertValue(t, mustGet(t, s, "k"), strconv.Itoa(i))
	}
}

func TestSuspendedWritesKeepIssueOrder(t *testing.T) {
	s := newSuspended(t)

	for i := 0; i < 100; i++ {
		s.Create("k", "a")
		s.Create("k", "b")
		assertValue(t, mustGet(t, s, "k"), "b")

		s.Create("gone", "x")
		s.Erase("gone")
		if v := mustGet(t, s, "gone"); v != nil {
			t.Fatalf("Expected erased key to be absent, got %v", v)
		}

		s.Create("other", "x")
		s.Reset()
		s.Create("after", "y")
		keys, err := s.Keys().Await()
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(keys, []string{"after"}) {
			t.Fatalf("Expected only the key written after Reset, got %v", keys)
		}
		s.Reset()
	}
}

// The read of a read-modify-write is queued when the call is made, so an
// earlier unawaited write is merged into.
func TestSuspendedInsertSeesEarlierWrite(t *testing.T) {
	s := newSuspended(t)

	for i := 0; i < 100; i++ {
		s.Create("k", "a")
		if _, err := s.Insert("k", "b").Await(); err != nil {
			t.Fatal(err)
		}
		assertValue(t, mustGet(t, s, "k"), "ab")
	}
}

func TestImmediateCompletesInline(t *testing.T) {
	s := New(backend.NewImmediate(memory.NewMemoryBackend()), DefaultOptions())
	defer s.Close()

	futures := map[string]interface{ IsDone() bool }{
		"create": s.Create("k", []any{map[string]any{"id": 1}}),
		"insert": s.Insert("k", map[string]any{"id": 2}),
		"update": s.Update("k", map[string]any{}, map[string]any{"id": 2, "x": 1}),
		"remove": s.Remove(1, "k"),
		"find":   s.Find("k", map[string]any{"id": 2}),
		"get":    s.Get("k"),
		"keys":   s.Keys(),
		"erase":  s.Erase("k"),
		"reset":  s.Reset(),
	}
	for op, f := range futures {
		if !f.IsDone() {
			t.Errorf("%s: expected an immediate backend to complete before returning", op)
		}
	}
}

func TestBackendFailure(t *testing.T) {
	adapters := map[string]*backend.Adapter{
		"Immediate": backend.NewImmediate(failingBackend{}),
		"Suspended": backend.NewSuspended(async.NewAsyncBackend(failingBackend{})),
	}

	for name, a := range adapters {
		t.Run(name, func(t *testing.T) {
			s := New(a, DefaultOptions())
			defer s.Close()

			errs := map[string]error{}
			_, errs["keys"] = s.Keys().Await()
			_, errs["get"] = s.Get("k").Await()
			_, errs["create"] = s.Create("k", "v").Await()
			_, errs["erase"] = s.Erase("k").Await()
			_, errs["reset"] = s.Reset().Await()
			_, errs["insert"] = s.Insert("k", "v").Await()
			_, errs["find"] = s.Find("k", "v").Await()
			_, errs["update"] = s.Update("k", map[string]any{}, map[string]any{"id": 1}).Await()
			_, errs["remove"] = s.Remove(1, "k").Await()

			for op, err := range errs {
				if !errors.Is(err, ErrBackendFailure) {
					t.Errorf("%s: expected ErrBackendFailure, got %v", op, err)
				}
				if !errors.Is(err, errBroken) {
					t.Errorf("%s: expected the backend cause to be preserved, got %v", op, err)
				}
			}
		})
	}
}

func TestEndToEnd(t *testing.T) {
	forEachMode(t, func(t *testing.T, s *Storage) {
		mustCreate(t, s, "k", nil)
		if v := mustGet(t, s, "k"); !value.IsEmpty(v) {
			t.Fatalf("Expected empty value after create, got %#v", v)
		}

		mustInsert(t, s, "k", map[string]any{"x": 1})
		assertValue(t, mustGet(t, s, "k"), map[string]any{"x": 1})

		mustInsert(t, s, "k", map[string]any{"y": 2})
		assertValue(t, mustGet(t, s, "k"), map[string]any{"x": 1, "y": 2})

		if _, err := s.Erase("k").Await(); err != nil {
			t.Fatal(err)
		}
		if v := mustGet(t, s, "k"); !value.IsEmpty(v) {
			t.Errorf("Expected empty result after erase, got %#v", v)
		}
	})
}

func TestInfo(t *testing.T) {
	s := New(backend.NewSuspended(async.NewAsyncBackend(memory.NewMemoryBackend())), DefaultOptions())
	defer s.Close()

	info := s.Info()
	if info.Name != "memory" || info.Mode != backend.ModeSuspended {
		t.Errorf("Unexpected info %+v", info)
	}
}
