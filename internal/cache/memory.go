package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Backend with periodic expiry and a size cap
type Memory struct {
	mu      sync.Mutex
	data    map[string]memoryEntry
	maxSize int
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates a memory cache. A zero cleanupInterval disables the sweeper.
func NewMemory(maxSize int, cleanupInterval time.Duration) *Memory {
	m := &Memory{
		data:    make(map[string]memoryEntry),
		maxSize: maxSize,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go m.cleanupLoop(cleanupInterval)
	}
	return m
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.data, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	if m.maxSize > 0 && len(m.data) > m.maxSize {
		m.evictLocked()
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stopCh) })
	return nil
}

func (m *Memory) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.mu.Lock()
			m.evictLocked()
			m.mu.Unlock()
		}
	}
}

// evictLocked drops expired entries, then the soonest-expiring ones beyond maxSize
func (m *Memory) evictLocked() {
	now := m.now()
	type kv struct {
		key       string
		expiresAt time.Time
	}
	live := make([]kv, 0, len(m.data))
	for k, e := range m.data {
		if now.After(e.expiresAt) {
			delete(m.data, k)
			continue
		}
		live = append(live, kv{k, e.expiresAt})
	}
	if m.maxSize <= 0 || len(live) <= m.maxSize {
		return
	}
	sort.Slice(live, func(i, j int) bool { return live[i].expiresAt.Before(live[j].expiresAt) })
	for _, e := range live[:len(live)-m.maxSize] {
		delete(m.data, e.key)
	}
}
