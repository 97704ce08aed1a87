package store

import (
	"context"
	"sync"
)

// Memory is an in-process KV. It backs the "memory" storage backend and
// lets tests inject write failures.
type Memory struct {
	mu       sync.Mutex
	data     map[string]string
	writeErr error
	keyErrs  map[string]error
	writes   int
}

var _ KV = (*Memory)(nil)

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{
		data:    make(map[string]string),
		keyErrs: make(map[string]error),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(key); err != nil {
		return err
	}
	m.data[key] = value
	m.writes++
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(key); err != nil {
		return err
	}
	delete(m.data, key)
	m.writes++
	return nil
}

// FailWrites makes every subsequent Set and Remove return err.
// Passing nil restores normal behaviour.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// FailKey makes writes to a single key return err. Passing nil clears it.
func (m *Memory) FailKey(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.keyErrs, key)
		return
	}
	m.keyErrs[key] = err
}

// Writes reports how many writes succeeded.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *Memory) failure(key string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	return m.keyErrs[key]
}
