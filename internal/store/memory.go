package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps every collection in a mutex-guarded map. It backs
// the test suite and the STORE_DRIVER=memory development mode. Safe
// for concurrent use; document bodies are copied on the way in and out
// so callers cannot alias the stored bytes.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) collection(name string) map[string][]byte {
	coll, ok := m.data[name]
	if !ok {
		coll = make(map[string][]byte)
		m.data[name] = coll
	}
	return coll
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.data[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(doc), nil
}

// Set implements Store.
func (m *MemoryStore) Set(ctx context.Context, collection, key string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collection(collection)[key] = clone(doc)
	return nil
}

// Create implements Store.
func (m *MemoryStore) Create(ctx context.Context, collection, key string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.collection(collection)
	if _, ok := coll[key]; ok {
		return ErrKeyExists
	}
	coll[key] = clone(doc)
	return nil
}

// Exists implements Store.
func (m *MemoryStore) Exists(ctx context.Context, collection, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[collection][key]
	return ok, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[collection], key)
	return nil
}

// Add implements Store.
func (m *MemoryStore) Add(ctx context.Context, collection string, doc []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.collection(collection)
	for {
		key := uuid.NewString()
		if _, ok := coll[key]; ok {
			continue
		}
		coll[key] = clone(doc)
		return key, nil
	}
}

// Scan implements Store.
func (m *MemoryStore) Scan(ctx context.Context, collection, start, stop string) ([]KeyedDoc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []KeyedDoc
	for key, doc := range m.data[collection] {
		if key >= start && key < stop {
			out = append(out, KeyedDoc{Key: key, Doc: clone(doc)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Apply implements Store. The whole batch runs under one lock, so a
// concurrent reader sees either none or all of its writes. Creates are
// validated up front; a conflict aborts before anything is applied.
func (m *MemoryStore) Apply(ctx context.Context, ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		if op.Kind != OpCreate {
			continue
		}
		if _, ok := m.data[op.Collection][op.Key]; ok {
			return ErrKeyExists
		}
	}
	for _, op := range ops {
		switch op.Kind {
		case OpDelete:
			delete(m.data[op.Collection], op.Key)
		default:
			m.collection(op.Collection)[op.Key] = clone(op.Doc)
		}
	}
	return nil
}
