package cache_pack

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiration
}

// MemoryTier keeps entries in a map guarded by a single mutex. Expired entries are dropped
// lazily on access.
type MemoryTier struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryTier() *MemoryTier {
	return &MemoryTier{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source, used by tests to expire keys.
func (m *MemoryTier) WithClock(now func() time.Time) *MemoryTier {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
	return m
}

// lookup must be called with mu held.
func (m *MemoryTier) lookup(key string) (memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (m *MemoryTier) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func (m *MemoryTier) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lookup(key)
	return entry.value, ok, nil
}

func (m *MemoryTier) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(key); ok {
		return false, nil
	}
	m.entries[key] = memoryEntry{value: value, expiresAt: m.deadline(ttl)}
	return true, nil
}

func (m *MemoryTier) Increment(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lookup(key)
	if !ok {
		return 0, ErrMiss
	}

	current, err := strconv.ParseInt(entry.value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value of %s is not an integer", key)
	}

	current++
	entry.value = strconv.FormatInt(current, 10)
	m.entries[key] = entry

	return current, nil
}

func (m *MemoryTier) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if entry, ok := m.lookup(key); ok {
			result[key] = entry.value
		}
	}
	return result, nil
}

func (m *MemoryTier) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: value, expiresAt: m.deadline(ttl)}
	return nil
}

func (m *MemoryTier) Add(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lookup(key)

	var current int64
	if ok {
		parsed, err := strconv.ParseInt(entry.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value of %s is not an integer", key)
		}
		current = parsed
	}

	current += delta
	entry.value = strconv.FormatInt(current, 10)
	if ttl > 0 {
		entry.expiresAt = m.deadline(ttl)
	}
	m.entries[key] = entry

	return current, nil
}

func (m *MemoryTier) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}
