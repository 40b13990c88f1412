package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store. The zero value is not usable; call NewMemory.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string, len(keyNames))}
}

// Load implements Store.
func (m *Memory) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Token:   m.data[KeyToken],
		Role:    m.data[KeyRole],
		Profile: m.data[KeyProfile],
	}, nil
}

// Save implements Store.
func (m *Memory) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkComplete(snap); err != nil {
		return err
	}
	next := map[string]string{
		KeyToken:   snap.Token,
		KeyRole:    snap.Role,
		KeyProfile: snap.Profile,
	}
	m.mu.Lock()
	m.data = next
	m.mu.Unlock()
	return nil
}

// Clear implements Store.
func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.data = make(map[string]string, len(keyNames))
	m.mu.Unlock()
	return nil
}

// Seed sets a single key directly, bypassing the all-or-nothing write. Intended for
// tests that need to start from a partial or tampered snapshot.
func (m *Memory) Seed(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == "" {
		delete(m.data, key)
		return
	}
	m.data[key] = value
}

// Get returns a single key.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Len returns the number of keys present.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
