// Package cache provides the injected TTL cache used by the identity
// resolver. It is an interface so tests can swap in a fake and deployments
// can move to a distributed cache without touching callers.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Cache is a string-keyed TTL cache. Values stored are treated as immutable
// by callers: Set copies in, Get hands the same value back. DeleteMatching
// drops every key containing the substring, used to invalidate families of
// listing keys after a write.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	DeleteMatching(substr string)
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Memory is a capacity-bounded in-process Cache. When full, expired entries
// are swept before inserting; a background sweep also runs periodically so
// abandoned keys do not accumulate.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]entry
	capacity int
	stop     chan struct{}
}

const (
	defaultCapacity = 1000
	sweepInterval   = 5 * time.Minute
)

// NewMemory creates a Memory cache with the default capacity bound.
func NewMemory() *Memory {
	m := &Memory{
		entries:  make(map[string]entry),
		capacity: defaultCapacity,
		stop:     make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

func (m *Memory) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) >= m.capacity {
		m.sweepLocked()
	}
	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *Memory) DeleteMatching(substr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.Contains(k, substr) {
			delete(m.entries, k)
		}
	}
}

// Close stops the background sweep goroutine.
func (m *Memory) Close() { close(m.stop) }

func (m *Memory) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.sweepLocked()
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

func (m *Memory) sweepLocked() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}
