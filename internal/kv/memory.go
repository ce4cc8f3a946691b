package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process Store. Values are kept as encoded JSON so
// reads observe the same round-trip behavior as a durable backend.
type Memory struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]json.RawMessage)}
}

func (m *Memory) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = raw

	return nil
}

func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decoding %q: %w", key, err)
	}

	return true, nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]json.RawMessage)

	return nil
}
