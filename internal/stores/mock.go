package stores

import (
	"context"
	"sync"
)

// MockStore is an in-memory store for tests and wiring checks. It is safe
// for concurrent use.
type MockStore struct {
	mu     sync.RWMutex
	values map[string]string

	// FailSet, when non-nil, is returned by every Set call.
	FailSet error
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{values: make(map[string]string)}
}

func (m *MockStore) Name() string { return "mock" }

func (m *MockStore) Set(_ context.Context, name, value string) error {
	if m.FailSet != nil {
		return m.FailSet
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	return nil
}

func (m *MockStore) Get(_ context.Context, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[name]
	if !ok {
		return "", NotFoundError{Store: m.Name(), Key: name}
	}
	return value, nil
}

func (m *MockStore) Validate(context.Context) error { return nil }

// Len returns the number of stored secrets.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
