package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresSlot implements Slot on a PostgreSQL table, for setups where
// several machines share one timeline collection.
type PostgresSlot struct {
	db *sql.DB
}

// OpenPostgres connects with pgx through database/sql and creates the slot
// tables if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSlot, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresSlot{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *PostgresSlot) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS slots (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			byte_size  INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id        BIGSERIAL PRIMARY KEY,
			action    TEXT NOT NULL CHECK (action IN ('put', 'delete')),
			slot_key  TEXT NOT NULL,
			byte_size INTEGER NOT NULL DEFAULT 0,
			ts        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get slot: %w", err)
	}
	return value, true, nil
}

func (s *PostgresSlot) Put(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO slots (key, value, byte_size, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE SET
			value      = EXCLUDED.value,
			byte_size  = EXCLUDED.byte_size,
			updated_at = EXCLUDED.updated_at
	`, key, value, len(value))
	if err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO audit_log (action, slot_key, byte_size) VALUES ('put', $1, $2)`,
		key, len(value),
	)
	if err != nil {
		return fmt.Errorf("record write: %w", err)
	}

	return tx.Commit()
}

func (s *PostgresSlot) Delete(ctx context.Context, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM slots WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO audit_log (action, slot_key) VALUES ('delete', $1)`, key,
		); err != nil {
			return fmt.Errorf("record delete: %w", err)
		}
	}

	return tx.Commit()
}

// GetStats returns slot and write-log statistics.
func (s *PostgresSlot) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Driver: DriverPostgres}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(byte_size), 0) FROM slots`,
	).Scan(&stats.Keys, &stats.PayloadBytes)
	if err != nil {
		return nil, fmt.Errorf("count slots: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE action = 'put'`,
	).Scan(&stats.Writes)
	if err != nil {
		return nil, fmt.Errorf("count writes: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT action, slot_key, byte_size, ts FROM audit_log ORDER BY id DESC LIMIT 5`,
	)
	if err != nil {
		return nil, fmt.Errorf("recent writes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w Write
		if err := rows.Scan(&w.Action, &w.Key, &w.Bytes, &w.At); err != nil {
			return nil, err
		}
		stats.RecentWrites = append(stats.RecentWrites, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(stats.RecentWrites) > 0 {
		stats.LastWrite = stats.RecentWrites[0].At
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT pg_total_relation_size('slots') + pg_total_relation_size('audit_log')`,
	).Scan(&stats.DatabaseSizeBytes)
	if err != nil {
		return nil, fmt.Errorf("relation size: %w", err)
	}

	return stats, nil
}

func (s *PostgresSlot) Close() error {
	return s.db.Close()
}
