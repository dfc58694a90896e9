package storage

import (
	"context"
	"sync"
	"time"
)

// MemorySlot implements Slot in process memory. Nothing survives Close.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes []Write
	closed bool
}

// NewMemorySlot creates an empty MemorySlot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

func (m *MemorySlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemorySlot) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	m.writes = append(m.writes, Write{Action: "put", Key: key, Bytes: int64(len(v)), At: time.Now()})
	return nil
}

func (m *MemorySlot) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if _, ok := m.values[key]; ok {
		delete(m.values, key)
		m.writes = append(m.writes, Write{Action: "delete", Key: key, At: time.Now()})
	}
	return nil
}

// GetStats reports key count, payload size and write history.
func (m *MemorySlot) GetStats(ctx context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &Stats{Driver: DriverMemory, Keys: int64(len(m.values))}
	for _, v := range m.values {
		stats.PayloadBytes += int64(len(v))
	}
	for i := len(m.writes) - 1; i >= 0; i-- {
		w := m.writes[i]
		if w.Action == "put" {
			stats.Writes++
		}
		if len(stats.RecentWrites) < 5 {
			stats.RecentWrites = append(stats.RecentWrites, w)
		}
	}
	if len(stats.RecentWrites) > 0 {
		stats.LastWrite = stats.RecentWrites[0].At
	}
	return stats, nil
}

func (m *MemorySlot) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.values = nil
	return nil
}
