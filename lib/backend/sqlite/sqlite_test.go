package sqlite

import (
	"github.com/ValentinKolb/kvfacade/lib/backend"
	"github.com/ValentinKolb/kvfacade/lib/backend/async"
	backendtesting "github.com/ValentinKolb/kvfacade/lib/backend/testing"
	"path/filepath"
	"testing"
)

func newTestBackend(t *testing.T) backend.IBackend {
	b, err := NewSqliteBackend(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func Test(t *testing.T) {
	backendtesting.RunBackendTests(t, "SQLite", func() *backend.Adapter {
		return backend.NewImmediate(newTestBackend(t))
	})
}

func TestSuspended(t *testing.T) {
	backendtesting.RunBackendTests(t, "SQLite(async)", func() *backend.Adapter {
		return backend.NewSuspended(async.NewAsyncBackend(newTestBackend(t)))
	})
}

func TestInMemory(t *testing.T) {
	backendtesting.RunBackendTests(t, "SQLite(:memory:)", func() *backend.Adapter {
		b, err := NewSqliteBackend(":memory:")
		if err != nil {
			t.Fatal(err)
		}
		return backend.NewImmediate(b)
	})
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	b, err := NewSqliteBackend(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Set("greeting", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSqliteBackend(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get("greeting")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || value != "hello" {
		t.Errorf("Expected value to survive reopen, got (%q, %v)", value, ok)
	}

	info := reopened.Info()
	if !info.Persistent || info.Name != "sqlite" {
		t.Errorf("Unexpected info %+v", info)
	}
}
