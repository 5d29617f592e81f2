package badger

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/kvfacade/lib/backend"
	"github.com/dgraph-io/badger/v4"
	"github.com/lni/dragonboat/v4/logger"
	"os"
	"sync"
	"time"
)

var (
	// Logger receives BadgerDB's internal log output
	Logger = logger.GetLogger("badger")
)

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Config holds configuration for a BadgerDB backend.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// GCInterval is how often to run value log garbage collection (0 = disabled).
	// GC never runs in in-memory mode.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum ratio of discardable data before GC (0.0-1.0).
	GCDiscardRatio float64
}

// DefaultConfig returns the default configuration for a persistent database at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a configuration for an in-memory database (for testing).
func InMemoryConfig() Config {
	return Config{
		InMemory: true,
	}
}

// --------------------------------------------------------------------------
// Backend
// --------------------------------------------------------------------------

// badgerImpl stores every entry as one BadgerDB key
type badgerImpl struct {
	db  *badger.DB
	cfg Config

	// value log gc
	stopGC chan struct{}
	gcDone chan struct{}
	once   sync.Once
}

// NewBadgerBackend opens a BadgerDB with the given configuration.
func NewBadgerBackend(cfg Config) (backend.IBackend, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}
	if cfg.GCDiscardRatio < 0 || cfg.GCDiscardRatio > 1 {
		return nil, errors.New("gc discard ratio must be between 0 and 1")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(Logger)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	b := &badgerImpl{
		db:     db,
		cfg:    cfg,
		stopGC: make(chan struct{}),
		gcDone: make(chan struct{}),
	}

	if !cfg.InMemory && cfg.GCInterval > 0 {
		go b.runGC()
	} else {
		close(b.gcDone)
	}

	backend.Logger.Infof("badger backend opened (path=%q, in-memory=%t)", cfg.Path, cfg.InMemory)

	return b, nil
}

// runGC periodically triggers value log garbage collection until Close is called
func (b *badgerImpl) runGC() {
	defer close(b.gcDone)

	ticker := time.NewTicker(b.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopGC:
			return
		case <-ticker.C:
			// ErrNoRewrite means there was nothing to collect
			if err := b.db.RunValueLogGC(b.cfg.GCDiscardRatio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				backend.Logger.Warningf("badger value log GC failed: %v", err)
			}
		}
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see backend/interface.go)
// --------------------------------------------------------------------------

func (b *badgerImpl) Get(key string) (string, bool, error) {
	var (
		value  []byte
		loaded bool
	)

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		loaded = true
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return "", false, err
	}

	return string(value), loaded, nil
}

func (b *badgerImpl) Set(key string, value string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

func (b *badgerImpl) Remove(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *badgerImpl) Clear() error {
	return b.db.DropAll()
}

// Keys iterates in BadgerDB's byte order, which is ascending
func (b *badgerImpl) Keys() ([]string, error) {
	keys := make([]string, 0)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})

	return keys, err
}

func (b *badgerImpl) Info() backend.Info {
	lsm, vlog := b.db.Size()
	return backend.Info{
		Name:       "badger",
		Persistent: !b.cfg.InMemory,
		Metadata: map[string]any{
			"path":       b.cfg.Path,
			"lsm_bytes":  lsm,
			"vlog_bytes": vlog,
		},
	}
}

func (b *badgerImpl) Close() error {
	var err error
	b.once.Do(func() {
		close(b.stopGC)
		<-b.gcDone
		err = b.db.Close()
	})
	return err
}
