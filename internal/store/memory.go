package store

// Package store implements the token/session store: a session-scoped
// in-memory tier, a persistent Redis tier, and the tiered facade that
// applies the read-precedence rule across them.

import (
	"context"
	"errors"
	"sync"
)

// ErrKeyNotFound is returned by a tier when a key is absent.
var ErrKeyNotFound = errors.New("key not found")

// Memory is the session-scoped storage tier. It lives for the process
// lifetime only, which gives an in-flight federated session precedence
// over a remembered long-lived one without persisting it.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-memory tier.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
