package file

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/kvfacade/lib/backend"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// fileImpl keeps all entries in memory and rewrites one JSON file on every write.
//
// Layout of the file:
//
//	{
//	  "users": "[{\"id\":1,\"name\":\"A\"}]",
//	  "greeting": "hello"
//	}
type fileImpl struct {
	mu     sync.RWMutex
	path   string
	data   map[string]string
	closed bool
}

// NewFileBackend opens (or creates) the JSON file at path.
// A missing file is treated as an empty backend; a file that can't be parsed is an error.
func NewFileBackend(path string) (backend.IBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory for %s: %w", path, err)
	}

	data, err := load(path)
	if err != nil {
		return nil, err
	}

	backend.Logger.Infof("file backend opened %s (%d entries)", path, len(data))

	return &fileImpl{path: path, data: data}, nil
}

// load reads the file at path, a missing file yields an empty map
func load(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return data, nil
}

// save writes the current state to a temporary file and renames it over the
// old one, so a crash never leaves a half written file behind.
//
// Thread-safety: the caller must hold the write lock.
func (f *fileImpl) save() error {
	b, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see backend/interface.go)
// --------------------------------------------------------------------------

func (f *fileImpl) Get(key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return "", false, backend.ErrClosed
	}
	value, ok := f.data[key]
	return value, ok, nil
}

func (f *fileImpl) Set(key string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return backend.ErrClosed
	}

	old, existed := f.data[key]
	f.data[key] = value
	if err := f.save(); err != nil {
		// keep memory and disk consistent
		if existed {
			f.data[key] = old
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *fileImpl) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return backend.ErrClosed
	}

	old, existed := f.data[key]
	if !existed {
		return nil
	}
	delete(f.data, key)
	if err := f.save(); err != nil {
		f.data[key] = old
		return err
	}
	return nil
}

func (f *fileImpl) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return backend.ErrClosed
	}

	old := f.data
	f.data = map[string]string{}
	if err := f.save(); err != nil {
		f.data = old
		return err
	}
	return nil
}

func (f *fileImpl) Keys() ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return nil, backend.ErrClosed
	}

	keys := make([]string, 0, len(f.data))
	for key := range f.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fileImpl) Info() backend.Info {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return backend.Info{
		Name:       "file",
		Persistent: true,
		Metadata: map[string]any{
			"path":    f.path,
			"entries": len(f.data),
		},
	}
}

func (f *fileImpl) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
