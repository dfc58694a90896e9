package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestSlot creates a migrated in-memory SQLiteSlot for testing.
func openTestSlot(t *testing.T) *SQLiteSlot {
	t.Helper()
	db := openTestDB(t)

	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	slot, err := NewSQLiteSlot(db, "")
	require.NoError(t, err)
	t.Cleanup(func() { slot.Close() })

	return slot
}

func TestSQLiteSlot_GetMissing(t *testing.T) {
	slot := openTestSlot(t)

	v, ok, err := slot.Get(context.Background(), "nothing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestSQLiteSlot_PutGetRoundtrip(t *testing.T) {
	slot := openTestSlot(t)
	ctx := context.Background()

	require.NoError(t, slot.Put(ctx, "k", []byte(`[{"id":"proj-1"}]`)))

	v, ok, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"proj-1"}]`, string(v))
}

func TestSQLiteSlot_PutOverwrites(t *testing.T) {
	slot := openTestSlot(t)
	ctx := context.Background()

	require.NoError(t, slot.Put(ctx, "k", []byte("first")))
	require.NoError(t, slot.Put(ctx, "k", []byte("second")))

	v, _, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(v))

	stats, err := slot.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Keys)
	assert.Equal(t, int64(len("second")), stats.PayloadBytes)
	assert.Equal(t, int64(2), stats.Writes)
}

func TestSQLiteSlot_EmptyValue(t *testing.T) {
	slot := openTestSlot(t)
	ctx := context.Background()

	require.NoError(t, slot.Put(ctx, "k", []byte{}))
	_, ok, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteSlot_Delete(t *testing.T) {
	slot := openTestSlot(t)
	ctx := context.Background()

	require.NoError(t, slot.Put(ctx, "k", []byte("v")))
	require.NoError(t, slot.Delete(ctx, "k"))
	require.NoError(t, slot.Delete(ctx, "never-written"))

	_, ok, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	stats, err := slot.GetStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats.RecentWrites, 2)
	assert.Equal(t, "delete", stats.RecentWrites[0].Action)
	assert.Equal(t, "put", stats.RecentWrites[1].Action)
}

func TestSQLiteSlot_StatsEmpty(t *testing.T) {
	slot := openTestSlot(t)

	stats, err := slot.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, stats.Driver)
	assert.Equal(t, int64(0), stats.Keys)
	assert.Equal(t, int64(0), stats.Writes)
	assert.True(t, stats.LastWrite.IsZero())
	assert.Greater(t, stats.DatabaseSizeBytes, int64(0))
}

func TestSQLiteSlot_RecentWritesCapped(t *testing.T) {
	slot := openTestSlot(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		require.NoError(t, slot.Put(ctx, "k", []byte("v")))
	}

	stats, err := slot.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), stats.Writes)
	assert.Len(t, stats.RecentWrites, 5)
	assert.False(t, stats.LastWrite.IsZero())
}

func TestOpenSQLite_FileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "timelines.db")
	ctx := context.Background()

	slot, err := OpenSQLite(path, "wal")
	require.NoError(t, err)
	require.NoError(t, slot.Put(ctx, "k", []byte("persisted")))
	require.NoError(t, slot.Close())

	reopened, err := OpenSQLite(path, "")
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", string(v))
}

func TestOpenSQLite_RejectsBadJournalMode(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "x.db"), "bogus")
	assert.Error(t, err)
}
