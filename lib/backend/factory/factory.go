package factory

import (
	"fmt"
	"github.com/ValentinKolb/kvfacade/lib/backend"
	"github.com/ValentinKolb/kvfacade/lib/backend/async"
	"github.com/ValentinKolb/kvfacade/lib/backend/badger"
	"github.com/ValentinKolb/kvfacade/lib/backend/file"
	"github.com/ValentinKolb/kvfacade/lib/backend/memory"
	"github.com/ValentinKolb/kvfacade/lib/backend/sqlite"
	"path/filepath"
)

// Names lists the supported backend names
var Names = []string{"memory", "file", "sqlite", "badger"}

// New creates an adapter for the named backend.
//
// Supported backends:
//
//	"memory" - In-memory (ephemeral, default)
//	"file"   - JSON file at dataDir/kv.json
//	"sqlite" - SQLite database at dataDir/kv.db
//	"badger" - BadgerDB directory at dataDir/badger
//
// In suspended mode the backend is wrapped by the async worker, so every
// operation completes on a background goroutine.
func New(name string, mode backend.Mode, dataDir string) (*backend.Adapter, error) {
	var (
		b   backend.IBackend
		err error
	)

	switch name {
	case "memory", "":
		b = memory.NewMemoryBackend()
	case "file":
		b, err = file.NewFileBackend(filepath.Join(dataDir, "kv.json"))
	case "sqlite":
		b, err = sqlite.NewSqliteBackend(filepath.Join(dataDir, "kv.db"))
	case "badger":
		b, err = badger.NewBadgerBackend(badger.DefaultConfig(filepath.Join(dataDir, "badger")))
	default:
		return nil, fmt.Errorf("unknown backend: %q (supported: %v)", name, Names)
	}
	if err != nil {
		return nil, err
	}

	switch mode {
	case backend.ModeImmediate:
		return backend.NewImmediate(b), nil
	case backend.ModeSuspended:
		return backend.NewSuspended(async.NewAsyncBackend(b)), nil
	default:
		_ = b.Close()
		return nil, fmt.Errorf("unknown backend mode: %s", mode)
	}
}
