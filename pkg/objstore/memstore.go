package objstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemStore keeps objects in process memory. It backs the "memory" backend
// and doubles as a test double: it counts calls per operation.
type MemStore struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
	calls   map[string]int
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		buckets: make(map[string]map[string][]byte),
		calls:   make(map[string]int),
	}
}

func (m *MemStore) Put(ctx context.Context, bucket Bucket, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["put"]++

	if err := ctx.Err(); err != nil {
		return &TransportError{Op: "put", Bucket: bucket.Name, Key: key, Err: err}
	}
	objs, ok := m.buckets[bucket.Name]
	if !ok {
		objs = make(map[string][]byte)
		m.buckets[bucket.Name] = objs
	}
	// Copy so callers can reuse their buffer.
	objs[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemStore) Get(ctx context.Context, bucket Bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["get"]++

	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Op: "get", Bucket: bucket.Name, Key: key, Err: err}
	}
	data, ok := m.buckets[bucket.Name][key]
	if !ok {
		return nil, NotFound(bucket, key)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemStore) Delete(ctx context.Context, bucket Bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["delete"]++

	if err := ctx.Err(); err != nil {
		return &TransportError{Op: "delete", Bucket: bucket.Name, Key: key, Err: err}
	}
	delete(m.buckets[bucket.Name], key)
	return nil
}

func (m *MemStore) ListKeys(ctx context.Context, bucket Bucket, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["list"]++

	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Op: "list", Bucket: bucket.Name, Err: err}
	}
	keys := []string{}
	for k := range m.buckets[bucket.Name] {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Calls returns how many times op ("put", "get", "delete" or "list") was
// invoked.
func (m *MemStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// ResetCalls zeroes all call counters.
func (m *MemStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
}
