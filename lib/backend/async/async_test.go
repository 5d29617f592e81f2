package async

import (
	"errors"
	"github.com/ValentinKolb/kvfacade/lib/backend"
	"sort"
	"sync"
	"testing"
	"time"
)

// blockingBackend is a map backend whose operations wait for a release signal
type blockingBackend struct {
	mu      sync.Mutex
	data    map[string]string
	release chan struct{}
	fail    error
	closed  bool
}

func newBlockingBackend() *blockingBackend {
	return &blockingBackend{data: map[string]string{}, release: make(chan struct{})}
}

func (b *blockingBackend) wait() { <-b.release }

func (b *blockingBackend) Get(key string) (string, bool, error) {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	return v, ok, b.fail
}

func (b *blockingBackend) Set(key string, value string) error {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.data[key] = value
	return nil
}

func (b *blockingBackend) Remove(key string) error {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return b.fail
}

func (b *blockingBackend) Clear() error {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = map[string]string{}
	return b.fail
}

func (b *blockingBackend) Keys() ([]string, error) {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, b.fail
}

func (b *blockingBackend) Info() backend.Info { return backend.Info{Name: "blocking"} }

func (b *blockingBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func TestOperationsAreSuspended(t *testing.T) {
	inner := newBlockingBackend()
	b := NewAsyncBackend(inner)

	f := b.Set("k", "v")
	if f.IsDone() {
		t.Fatalf("Set should not complete before the backend finished")
	}

	close(inner.release)

	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatalf("Timeout waiting for Set")
	}

	lookup, err := b.Get("k").Await()
	if err != nil {
		t.Fatal(err)
	}
	if !lookup.Loaded || lookup.Value != "v" {
		t.Errorf("Expected (v, true), got (%s, %v)", lookup.Value, lookup.Loaded)
	}

	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if !inner.closed {
		t.Errorf("Close should close the wrapped backend")
	}
}

func TestIssueOrder(t *testing.T) {
	inner := newBlockingBackend()
	close(inner.release)
	b := NewAsyncBackend(inner)
	defer b.Close()

	// none of these are awaited, the worker must still apply them in order
	b.Set("k", "1")
	b.Set("k", "2")
	b.Remove("k")
	b.Set("k", "3")

	lookup, err := b.Get("k").Await()
	if err != nil {
		t.Fatal(err)
	}
	if lookup.Value != "3" {
		t.Errorf("Expected last write to win, got %q", lookup.Value)
	}
}

func TestErrorsRejectFuture(t *testing.T) {
	inner := newBlockingBackend()
	close(inner.release)
	inner.fail = errors.New("disk full")
	b := NewAsyncBackend(inner)
	defer b.Close()

	if _, err := b.Set("k", "v").Await(); !errors.Is(err, inner.fail) {
		t.Errorf("Expected backend error to reject the future, got %v", err)
	}
	if _, err := b.Keys().Await(); !errors.Is(err, inner.fail) {
		t.Errorf("Expected backend error to reject the future, got %v", err)
	}
}

func TestCloseDrainsAndRejects(t *testing.T) {
	inner := newBlockingBackend()
	b := NewAsyncBackend(inner)

	pending := b.Set("k", "v")

	closed := make(chan error)
	go func() { closed <- b.Close() }()

	// Close must wait for the queued Set
	select {
	case <-closed:
		t.Fatalf("Close returned before pending operations completed")
	case <-time.After(20 * time.Millisecond):
	}

	close(inner.release)

	if _, err := pending.Await(); err != nil {
		t.Errorf("Pending operation should complete, got %v", err)
	}
	if err := <-closed; err != nil {
		t.Fatal(err)
	}

	if _, err := b.Get("k").Await(); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("Expected ErrClosed after Close, got %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
}

func TestInfo(t *testing.T) {
	inner := newBlockingBackend()
	b := NewAsyncBackend(inner)
	defer b.Close()

	info := b.Info()
	if info.Name != "blocking" || info.Mode != backend.ModeSuspended {
		t.Errorf("Unexpected info %+v", info)
	}
}
