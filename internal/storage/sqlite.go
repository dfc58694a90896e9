package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSlot implements Slot backed by a SQLite database.
type SQLiteSlot struct {
	db      *sql.DB
	path    string
	closeDB bool

	// Prepared statements
	getSlot    *sql.Stmt
	upsertSlot *sql.Stmt
	deleteSlot *sql.Stmt
	insertLog  *sql.Stmt
}

// NewSQLiteSlot creates a SQLiteSlot from an already-opened and migrated
// database. path is used only for reporting the file size and may be empty.
func NewSQLiteSlot(db *sql.DB, path string) (*SQLiteSlot, error) {
	s := &SQLiteSlot{db: db, path: path}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

// OpenSQLite opens the database file at path, creating its directory, and
// runs migrations. The returned slot owns the database and closes it on
// Close.
func OpenSQLite(path, journalMode string) (*SQLiteSlot, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	runner := NewMigrationRunner(db)
	if err := runner.SetJournalMode(journalMode); err != nil {
		db.Close()
		return nil, err
	}
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s, err := NewSQLiteSlot(db, path)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.closeDB = true
	return s, nil
}

func (s *SQLiteSlot) prepareStatements() error {
	var err error

	s.getSlot, err = s.db.Prepare(`SELECT value FROM slots WHERE key = ?`)
	if err != nil {
		return err
	}

	s.upsertSlot, err = s.db.Prepare(`
		INSERT INTO slots (key, value, byte_size, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			byte_size  = excluded.byte_size,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	s.deleteSlot, err = s.db.Prepare(`DELETE FROM slots WHERE key = ?`)
	if err != nil {
		return err
	}

	s.insertLog, err = s.db.Prepare(`
		INSERT INTO audit_log (action, slot_key, byte_size, ts)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	return nil
}

// Get returns the value stored under key.
func (s *SQLiteSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.getSlot.QueryRowContext(ctx, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get slot: %w", err)
	}
	return value, true, nil
}

// Put overwrites the value under key and records the write, in a single
// transaction.
func (s *SQLiteSlot) Put(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.StmtContext(ctx, s.upsertSlot).ExecContext(ctx, key, value, len(value), now); err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}
	if _, err := tx.StmtContext(ctx, s.insertLog).ExecContext(ctx, "put", key, len(value), now); err != nil {
		return fmt.Errorf("record write: %w", err)
	}

	return tx.Commit()
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLiteSlot) Delete(ctx context.Context, key string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.StmtContext(ctx, s.deleteSlot).ExecContext(ctx, key)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := tx.StmtContext(ctx, s.insertLog).ExecContext(ctx, "delete", key, 0, now); err != nil {
			return fmt.Errorf("record delete: %w", err)
		}
	}

	return tx.Commit()
}

// GetStats returns aggregate statistics about the slot table and its write
// log.
func (s *SQLiteSlot) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Driver: DriverSQLite}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(byte_size), 0) FROM slots",
	).Scan(&stats.Keys, &stats.PayloadBytes)
	if err != nil {
		return nil, fmt.Errorf("count slots: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audit_log WHERE action = 'put'",
	).Scan(&stats.Writes)
	if err != nil {
		return nil, fmt.Errorf("count writes: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT action, slot_key, byte_size, ts FROM audit_log ORDER BY id DESC LIMIT 5",
	)
	if err != nil {
		return nil, fmt.Errorf("recent writes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w Write
		var tsStr string
		if err := rows.Scan(&w.Action, &w.Key, &w.Bytes, &tsStr); err != nil {
			return nil, err
		}
		w.At, _ = parseTimestamp(tsStr)
		stats.RecentWrites = append(stats.RecentWrites, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(stats.RecentWrites) > 0 {
		stats.LastWrite = stats.RecentWrites[0].At
	}

	stats.DatabaseSizeBytes = s.databaseSize()

	return stats, nil
}

// databaseSize returns the database file size in bytes. For in-memory
// databases, it queries page_count * page_size.
func (s *SQLiteSlot) databaseSize() int64 {
	if s.path != "" && s.path != ":memory:" {
		if info, err := os.Stat(s.path); err == nil {
			return info.Size()
		}
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := s.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// Close releases all prepared statements. The underlying *sql.DB is closed
// only when the slot was created by OpenSQLite.
func (s *SQLiteSlot) Close() error {
	stmts := []*sql.Stmt{s.getSlot, s.upsertSlot, s.deleteSlot, s.insertLog}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	if s.closeDB {
		return s.db.Close()
	}
	return nil
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}
