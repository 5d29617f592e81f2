package future

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestResolved(t *testing.T) {
	f := Resolved(42)
	if !f.IsDone() {
		t.Fatalf("Resolved future should be done immediately")
	}
	v, err := f.Await()
	if err != nil || v != 42 {
		t.Errorf("Expected (42, nil), got (%v, %v)", v, err)
	}
}

func TestRejected(t *testing.T) {
	cause := errors.New("boom")
	f := Rejected[string](cause)
	v, err := f.Await()
	if !errors.Is(err, cause) {
		t.Errorf("Expected error %v, got %v", cause, err)
	}
	if v != "" {
		t.Errorf("Expected zero value, got %q", v)
	}
}

func TestCompleteOnce(t *testing.T) {
	f := New[int]()

	if !f.Complete(1, nil) {
		t.Fatalf("First Complete should settle the future")
	}
	if f.Complete(2, errors.New("late")) {
		t.Fatalf("Second Complete should be ignored")
	}

	v, err := f.Await()
	if v != 1 || err != nil {
		t.Errorf("Expected (1, nil), got (%v, %v)", v, err)
	}
}

func TestConcurrentComplete(t *testing.T) {
	f := New[int]()

	var (
		wg      sync.WaitGroup
		settled atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if f.Complete(i, nil) {
				settled.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if settled.Load() != 1 {
		t.Errorf("Expected exactly one Complete to settle the future, got %d", settled.Load())
	}
}

func TestGo(t *testing.T) {
	release := make(chan struct{})
	f := Go(func() (string, error) {
		<-release
		return "done", nil
	})

	if f.IsDone() {
		t.Fatalf("Future should be pending until the function returns")
	}
	close(release)

	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatalf("Timeout waiting for future")
	}

	v, err := f.Await()
	if v != "done" || err != nil {
		t.Errorf("Expected (done, nil), got (%v, %v)", v, err)
	}
}

func TestAwaitContext(t *testing.T) {
	f := New[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := f.AwaitContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}

	// the future is still usable after the waiter gave up
	f.Complete(7, nil)
	v, err := f.AwaitContext(context.Background())
	if v != 7 || err != nil {
		t.Errorf("Expected (7, nil), got (%v, %v)", v, err)
	}
}

func TestThenCompletedRunsInline(t *testing.T) {
	ran := false
	f := Then(Resolved(2), func(v int, err error) (int, error) {
		ran = true
		return v * 2, err
	})

	// no synchronisation needed, the continuation ran before Then returned
	if !ran || !f.IsDone() {
		t.Fatalf("Expected continuation of a completed future to run inline")
	}
	if v, err := f.Await(); v != 4 || err != nil {
		t.Errorf("Expected (4, nil), got (%v, %v)", v, err)
	}
}

func TestThenPending(t *testing.T) {
	src := New[string]()
	f := Then(src, func(v string, err error) (int, error) {
		return len(v), err
	})

	if f.IsDone() {
		t.Fatalf("Continuation of a pending future must wait")
	}

	src.Complete("four", nil)
	if v, err := f.Await(); v != 4 || err != nil {
		t.Errorf("Expected (4, nil), got (%v, %v)", v, err)
	}
}

func TestThenPropagatesError(t *testing.T) {
	cause := errors.New("boom")
	f := Then(Rejected[int](cause), func(v int, err error) (int, error) {
		if err != nil {
			return 0, errors.Join(errors.New("wrapped"), err)
		}
		return v, nil
	})

	if _, err := f.Await(); !errors.Is(err, cause) {
		t.Errorf("Expected error to reach the continuation, got %v", err)
	}
}

func TestChain(t *testing.T) {
	src := New[int]()
	inner := New[string]()

	f := Chain(src, func(v int, err error) *Future[string] {
		if v != 1 || err != nil {
			return Rejected[string](errors.New("unexpected input"))
		}
		return inner
	})

	src.Complete(1, nil)

	select {
	case <-f.Done():
		t.Fatalf("Chained future must wait for the inner future")
	case <-time.After(10 * time.Millisecond):
	}

	inner.Complete("done", nil)
	if v, err := f.Await(); v != "done" || err != nil {
		t.Errorf("Expected (done, nil), got (%v, %v)", v, err)
	}
}
