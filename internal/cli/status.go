package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/timelines/internal/config"
	"github.com/runnerr0/timelines/internal/storage"
	"github.com/runnerr0/timelines/internal/timeline"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string      `json:"version"`
	Driver            string      `json:"driver"`
	SlotKey           string      `json:"slot_key"`
	DatabaseSizeBytes int64       `json:"database_size_bytes"`
	PayloadBytes      int64       `json:"payload_bytes"`
	Writes            int64       `json:"writes"`
	LastWrite         string      `json:"last_write,omitempty"`
	Timelines         int         `json:"timelines"`
	Events            int         `json:"events"`
	People            int         `json:"people"`
	Tags              int         `json:"tags"`
	RecentWrites      []writeJSON `json:"recent_writes"`
	ServerRunning     bool        `json:"server_running"`
}

type writeJSON struct {
	Action string `json:"action"`
	Key    string `json:"key"`
	Bytes  int64  `json:"bytes"`
	At     string `json:"at"`
}

// collectionCounts summarizes the loaded collection.
type collectionCounts struct {
	timelines, events, people, tags int
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	ctx := context.Background()
	env, err := openEnvironment(ctx, c.globals)
	if err != nil {
		return err
	}
	defer env.Close()

	return c.executeWithStore(ctx, env.store, env.backend, env.cfg)
}

// executeWithStore runs status against a provided store and backend (for testing).
func (c *StatusCommand) executeWithStore(ctx context.Context, store *timeline.Store, backend storage.Backend, cfg *config.Config) error {
	stats, err := backend.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	counts := countCollection(store.Timelines())
	running := checkServer(cfg.Server)

	if jsonOutput(c.globals) {
		return c.printStatusJSON(stats, cfg, counts, running)
	}
	return c.printStatusHuman(stats, cfg, counts, running)
}

func (c *StatusCommand) printStatusHuman(stats *storage.Stats, cfg *config.Config, counts collectionCounts, running bool) error {
	fmt.Println("Timelines Status")
	fmt.Println("================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Storage:       %s (%s)\n", stats.Driver, formatBytes(stats.DatabaseSizeBytes))
	fmt.Printf("Slot:          %s (%s)\n", slotKey(cfg), formatBytes(stats.PayloadBytes))
	fmt.Printf("Timelines:     %d\n", counts.timelines)
	fmt.Printf("Events:        %d\n", counts.events)
	fmt.Printf("People:        %d\n", counts.people)
	fmt.Printf("Tags:          %d\n", counts.tags)
	fmt.Printf("Writes:        %d\n", stats.Writes)
	if !stats.LastWrite.IsZero() {
		fmt.Printf("Last write:    %s\n", stats.LastWrite.Local().Format(time.RFC3339))
	}

	if len(stats.RecentWrites) > 0 {
		fmt.Println()
		fmt.Println("Recent Writes:")
		for _, w := range stats.RecentWrites {
			fmt.Printf("  %-7s %-20s %10s  %s\n", w.Action, w.Key, formatBytes(w.Bytes), w.At.Local().Format(time.RFC3339))
		}
	}

	fmt.Println()
	if running {
		fmt.Println("Server:        running")
	} else {
		fmt.Println("Server:        not running")
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(stats *storage.Stats, cfg *config.Config, counts collectionCounts, running bool) error {
	out := statusJSON{
		Version:           c.version,
		Driver:            stats.Driver,
		SlotKey:           slotKey(cfg),
		DatabaseSizeBytes: stats.DatabaseSizeBytes,
		PayloadBytes:      stats.PayloadBytes,
		Writes:            stats.Writes,
		Timelines:         counts.timelines,
		Events:            counts.events,
		People:            counts.people,
		Tags:              counts.tags,
		RecentWrites:      make([]writeJSON, len(stats.RecentWrites)),
		ServerRunning:     running,
	}

	if !stats.LastWrite.IsZero() {
		out.LastWrite = stats.LastWrite.UTC().Format(time.RFC3339)
	}

	for i, w := range stats.RecentWrites {
		out.RecentWrites[i] = writeJSON{Action: w.Action, Key: w.Key, Bytes: w.Bytes, At: w.At.UTC().Format(time.RFC3339)}
	}

	return printJSON(out)
}

func countCollection(all []timeline.Timeline) collectionCounts {
	counts := collectionCounts{timelines: len(all)}
	people := map[string]struct{}{}
	tags := map[string]struct{}{}
	for _, t := range all {
		counts.events += len(t.Events)
		for _, p := range timeline.DistinctPeople(t.Events) {
			people[p] = struct{}{}
		}
		for _, tag := range timeline.DistinctTags(t.Events) {
			tags[tag] = struct{}{}
		}
	}
	counts.people = len(people)
	counts.tags = len(tags)
	return counts
}

func slotKey(cfg *config.Config) string {
	if cfg.Storage.SlotKey == "" {
		return timeline.DefaultSlotKey
	}
	return cfg.Storage.SlotKey
}

// checkServer attempts an HTTP GET against the configured server's health
// endpoint. Returns true if it responds within 1 second.
func checkServer(cfg config.ServerConfig) bool {
	if cfg.Port == 0 {
		return false
	}
	host := cfg.Host
	if host == "" || host == "0.0.0.0" || strings.Contains(host, "::") {
		host = "127.0.0.1"
	}
	url := "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.Port)) + "/health"

	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
