package storage

import (
	"context"
	"fmt"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures a slot backend.
type Options struct {
	Driver      string
	SQLitePath  string
	JournalMode string
	PostgresDSN string
}

// Backend is a Slot that can also report statistics.
type Backend interface {
	Slot
	GetStats(ctx context.Context) (*Stats, error)
}

// Open returns the backend named by opts.Driver. An empty driver selects
// SQLite.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		if opts.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite driver requires a database path")
		}
		s, err := OpenSQLite(opts.SQLitePath, opts.JournalMode)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres driver requires a DSN")
		}
		s, err := OpenPostgres(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemorySlot(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
