package cache

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/seo-optimizer/pageaudit/analyzer"
)

var _ analyzer.ResultCache = &Memory{}

// Cache entry with expiration
type entry struct {
	result    *analyzer.Result
	expiresAt time.Time
	storedAt  time.Time
}

// Memory is an in-process analysis cache with per-entry TTL and a size cap
type Memory struct {
	mu              sync.RWMutex
	entries         map[string]entry
	maxSize         int
	cleanupInterval time.Duration
	now             func() time.Time
	stop            chan struct{}
	stopOnce        sync.Once
}

// MemoryOption configures a Memory cache
type MemoryOption func(*Memory)

// WithMaxSize caps the number of cached analyses
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// WithCleanupInterval sets how often expired entries are purged; 0 disables
// the background cleanup goroutine
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(m *Memory) { m.cleanupInterval = d }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates a Memory cache and starts its cleanup loop
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries:         make(map[string]entry),
		maxSize:         1000,
		cleanupInterval: 5 * time.Minute,
		now:             time.Now,
		stop:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cleanupInterval > 0 {
		go m.periodicCleanup()
	}
	return m
}

// Get returns a copy of a fresh entry; expired entries are never returned
func (m *Memory) Get(_ context.Context, key string) (*analyzer.Result, bool, error) {
	k := Key(key)
	m.mu.RLock()
	e, ok := m.entries[k]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return clone(e.result), true, nil
}

// Set stores a copy of result for ttl
func (m *Memory) Set(_ context.Context, key string, result *analyzer.Result, ttl time.Duration) error {
	now := m.now()
	m.mu.Lock()
	m.entries[Key(key)] = entry{result: clone(result), expiresAt: now.Add(ttl), storedAt: now}
	over := len(m.entries) > m.maxSize
	m.mu.Unlock()

	if over {
		m.Cleanup()
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet purged
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear drops every entry
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
}

// periodicCleanup removes expired entries periodically
func (m *Memory) periodicCleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Cleanup()
		case <-m.stop:
			return
		}
	}
}

// Cleanup removes expired entries and then the oldest ones until the cache
// fits its size limit
func (m *Memory) Cleanup() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, key)
		}
	}

	if m.maxSize <= 0 || len(m.entries) <= m.maxSize {
		return
	}

	type aged struct {
		key      string
		storedAt time.Time
	}
	entries := make([]aged, 0, len(m.entries))
	for key, e := range m.entries {
		entries = append(entries, aged{key, e.storedAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].storedAt.Before(entries[j].storedAt)
	})
	for i := 0; i < len(entries)-m.maxSize; i++ {
		delete(m.entries, entries[i].key)
	}
}

// Close stops the cleanup goroutine
func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

// clone copies a result so callers never share the cached value
func clone(r *analyzer.Result) *analyzer.Result {
	if r == nil {
		return nil
	}
	c := *r
	c.Keywords = slices.Clone(r.Keywords)
	c.Links = slices.Clone(r.Links)
	c.Suggestions = slices.Clone(r.Suggestions)
	if r.RelatedKeywords != nil {
		c.RelatedKeywords = make([]analyzer.RelatedKeywords, len(r.RelatedKeywords))
		for i, rk := range r.RelatedKeywords {
			rk.Related = slices.Clone(rk.Related)
			c.RelatedKeywords[i] = rk
		}
	}
	return &c
}
