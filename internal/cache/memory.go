package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value    []byte
	storedAt time.Time
}

// Memory is an in-process Store. Stale entries are evicted lazily when
// looked up.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates an in-process store with the given TTL.
func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a fresh value for key. An entry whose age has reached the TTL
// is removed and reported as a miss.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if m.now().Sub(e.storedAt) < m.ttl {
		return e.value, true
	}

	m.mu.Lock()
	// A concurrent Set may have refreshed the entry.
	if cur, ok := m.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return nil, false
}

// Set stores a copy of value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	m.entries[key] = entry{value: v, storedAt: m.now()}
	m.mu.Unlock()
	return nil
}

// Len returns the number of entries, including stale ones not yet evicted.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error {
	return nil
}

// Close drops every entry.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
	return nil
}
