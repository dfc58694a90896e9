package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/timelines/internal/storage"
	"github.com/runnerr0/timelines/internal/timeline"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestStore returns a store over an in-memory slot with deterministic ids
// and a fixed clock.
func newTestStore(t *testing.T) (*timeline.Store, *storage.MemorySlot) {
	t.Helper()

	slot := storage.NewMemorySlot()
	t.Cleanup(func() { slot.Close() })

	n := 0
	ids := func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}

	store := timeline.NewStore(
		timeline.NewSlotPersister(slot, ""),
		timeline.WithIDGenerator(ids),
		timeline.WithClock(func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) }),
		timeline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	store.Initialize(context.Background())
	return store, slot
}
