package memory

import (
	"github.com/ValentinKolb/kvfacade/lib/backend"
	"github.com/puzpuzpuz/xsync/v3"
	"sort"
)

// memoryImpl keeps every entry in a concurrent map
type memoryImpl struct {
	data *xsync.MapOf[string, string]
}

// NewMemoryBackend creates an empty in-memory backend.
// Data is lost when the process exits.
func NewMemoryBackend() backend.IBackend {
	return &memoryImpl{
		data: xsync.NewMapOf[string, string](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see backend/interface.go)
// --------------------------------------------------------------------------

func (m *memoryImpl) Get(key string) (string, bool, error) {
	value, ok := m.data.Load(key)
	return value, ok, nil
}

func (m *memoryImpl) Set(key string, value string) error {
	m.data.Store(key, value)
	return nil
}

func (m *memoryImpl) Remove(key string) error {
	m.data.Delete(key)
	return nil
}

func (m *memoryImpl) Clear() error {
	m.data.Clear()
	return nil
}

// Keys returns the keys in ascending order, map iteration order is random
func (m *memoryImpl) Keys() ([]string, error) {
	keys := make([]string, 0, m.data.Size())
	m.data.Range(func(key string, _ string) bool {
		keys = append(keys, key)
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

func (m *memoryImpl) Info() backend.Info {
	return backend.Info{
		Name:       "memory",
		Persistent: false,
		Metadata: map[string]any{
			"entries": m.data.Size(),
		},
	}
}

func (m *memoryImpl) Close() error {
	m.data.Clear()
	return nil
}
