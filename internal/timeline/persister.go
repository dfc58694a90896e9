package timeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// DefaultSlotKey is the durable slot holding the serialized collection.
const DefaultSlotKey = "timeline-app-data"

// ErrCorruptPayload is returned by Load when the stored document cannot be
// decoded.
var ErrCorruptPayload = errors.New("corrupt timeline payload")

// Persister loads and saves the whole timeline collection.
type Persister interface {
	// Load returns the stored collection, or nil with no error when nothing
	// has been stored yet.
	Load(ctx context.Context) ([]Timeline, error)
	Save(ctx context.Context, timelines []Timeline) error
}

// Slot is a durable key-value slot.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// SlotPersister stores the collection as one JSON document under a single
// slot key.
type SlotPersister struct {
	slot Slot
	key  string
}

// NewSlotPersister creates a SlotPersister. An empty key selects
// DefaultSlotKey.
func NewSlotPersister(slot Slot, key string) *SlotPersister {
	if key == "" {
		key = DefaultSlotKey
	}
	return &SlotPersister{slot: slot, key: key}
}

// Load reads and decodes the slot.
func (p *SlotPersister) Load(ctx context.Context) ([]Timeline, error) {
	data, ok, err := p.slot.Get(ctx, p.key)
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", p.key, err)
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}
	return Decode(data)
}

// Save encodes the collection and overwrites the slot.
func (p *SlotPersister) Save(ctx context.Context, timelines []Timeline) error {
	data, err := Encode(timelines)
	if err != nil {
		return err
	}
	if err := p.slot.Put(ctx, p.key, data); err != nil {
		return fmt.Errorf("write slot %s: %w", p.key, err)
	}
	return nil
}

// Encode serializes a collection to the durable JSON format.
func Encode(timelines []Timeline) ([]byte, error) {
	if timelines == nil {
		timelines = []Timeline{}
	}
	data, err := json.Marshal(timelines)
	if err != nil {
		return nil, fmt.Errorf("encode timelines: %w", err)
	}
	return data, nil
}

// Decode parses the durable JSON format, normalizing missing sequences to
// empty ones.
func Decode(data []byte) ([]Timeline, error) {
	var timelines []Timeline
	if err := json.Unmarshal(data, &timelines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	for i := range timelines {
		timelines[i].normalize()
	}
	return timelines, nil
}

// MemoryPersister keeps the last saved collection in memory.
type MemoryPersister struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	LoadErr error
	SaveErr error
}

// NewMemoryPersister creates an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load decodes the last saved document.
func (m *MemoryPersister) Load(ctx context.Context) ([]Timeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.data == nil {
		return nil, nil
	}
	return Decode(m.data)
}

// Save records an encoded copy of timelines.
func (m *MemoryPersister) Save(ctx context.Context, timelines []Timeline) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := Encode(timelines)
	if err != nil {
		return err
	}
	m.data = data
	m.saves++
	return nil
}

// Saves returns how many saves succeeded.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Raw returns the last saved document.
func (m *MemoryPersister) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// SetRaw replaces the stored document, e.g. to simulate a corrupt payload.
func (m *MemoryPersister) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
}
