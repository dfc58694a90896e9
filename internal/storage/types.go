package storage

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed slot.
var ErrClosed = errors.New("slot is closed")

// Slot is a durable key-value store holding whole documents under a key.
type Slot interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been written or was deleted.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put overwrites the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Stats holds aggregate statistics about a slot backend.
type Stats struct {
	Driver            string
	Keys              int64
	PayloadBytes      int64
	Writes            int64
	LastWrite         time.Time
	DatabaseSizeBytes int64
	RecentWrites      []Write
}

// Write is one recorded Put or Delete.
type Write struct {
	Action string // "put", "delete"
	Key    string
	Bytes  int64
	At     time.Time
}
