package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/runnerr0/timelines/internal/config"
	"github.com/runnerr0/timelines/internal/storage"
	"github.com/runnerr0/timelines/internal/timeline"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	ctx := context.Background()
	env, err := openEnvironment(ctx, c.globals)
	if err != nil {
		return err
	}
	defer env.Close()

	return c.executeWithBackend(ctx, env.store, env.backend, env.cfg)
}

// executeWithBackend runs purge against a provided store and backend (for testing).
func (c *PurgeCommand) executeWithBackend(ctx context.Context, store *timeline.Store, backend storage.Backend, cfg *config.Config) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	counts := countCollection(store.Timelines())

	// Confirmation prompt unless --force
	if !c.Force {
		fmt.Println("⚠ WARNING: This will permanently delete ALL timeline data.")
		fmt.Printf("  - %d timeline(s)\n", counts.timelines)
		fmt.Printf("  - %d event(s) and their media\n", counts.events)
		fmt.Println()
		fmt.Println("This action cannot be undone.")
		fmt.Println()
		fmt.Print(`Type "PURGE" to confirm: `)

		var in io.Reader = os.Stdin
		if c.stdin != nil {
			in = c.stdin
		}
		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		if strings.TrimSpace(scanner.Text()) != "PURGE" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	if err := backend.Delete(ctx, slotKey(cfg)); err != nil {
		return fmt.Errorf("purge slot: %w", err)
	}

	if jsonOutput(c.globals) {
		return printJSON(map[string]interface{}{
			"purged":    true,
			"timelines": counts.timelines,
			"events":    counts.events,
		})
	}

	fmt.Printf("Purged %d timeline(s) and %d event(s).\n", counts.timelines, counts.events)
	return nil
}
