package cli

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/runnerr0/timelines/internal/config"
	"github.com/runnerr0/timelines/internal/metrics"
	"github.com/runnerr0/timelines/internal/storage"
	"github.com/runnerr0/timelines/internal/timeline"
)

// environment is everything a command needs to reach the collection.
type environment struct {
	cfg     *config.Config
	log     *slog.Logger
	backend storage.Backend
	metrics *metrics.Metrics
	store   *timeline.Store
}

// loadConfig resolves the config file from --config or the default path,
// creating it with defaults on first run, then applies --db-path.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if globals != nil && globals.Config != "" {
		path, perr := config.ExpandPath(globals.Config)
		if perr != nil {
			return nil, perr
		}
		cfg, err = config.LoadOrCreateAt(path)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if globals != nil && globals.DBPath != "" {
		cfg.Storage.Driver = storage.DriverSQLite
	}
	return cfg, nil
}

// storageOptions translates the storage config into backend options.
func storageOptions(cfg *config.Config, globals *GlobalFlags) (storage.Options, error) {
	opts := storage.Options{
		Driver:      cfg.Storage.Driver,
		JournalMode: cfg.Storage.SQLiteJournalMode,
		PostgresDSN: cfg.Storage.PostgresDSN,
	}
	if opts.Driver == storage.DriverSQLite {
		if globals != nil && globals.DBPath != "" {
			path, err := config.ExpandPath(globals.DBPath)
			if err != nil {
				return storage.Options{}, err
			}
			opts.SQLitePath = path
		} else {
			path, err := cfg.Storage.SQLitePath()
			if err != nil {
				return storage.Options{}, err
			}
			opts.SQLitePath = path
		}
	}
	return opts, nil
}

// newLogger builds the process logger. Logs go to stderr so that --json
// output on stdout stays parseable.
func newLogger(cfg config.LoggingConfig, verbose bool) *slog.Logger {
	level := parseLevel(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openEnvironment loads config, opens the storage backend and loads the
// collection into a fresh store.
func openEnvironment(ctx context.Context, globals *GlobalFlags) (*environment, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}
	return openEnvironmentWith(ctx, cfg, globals)
}

func openEnvironmentWith(ctx context.Context, cfg *config.Config, globals *GlobalFlags) (*environment, error) {
	verbose := globals != nil && globals.Verbose
	log := newLogger(cfg.Logging, verbose)

	opts, err := storageOptions(cfg, globals)
	if err != nil {
		return nil, err
	}
	backend, err := storage.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	m := metrics.New()
	store := timeline.NewStore(
		timeline.NewSlotPersister(backend, cfg.Storage.SlotKey),
		timeline.WithLogger(log),
		timeline.WithRecorder(m),
	)
	store.Initialize(ctx)

	log.Debug("storage opened", "driver", opts.Driver, "sqlite_path", opts.SQLitePath)

	return &environment{
		cfg:     cfg,
		log:     log,
		backend: backend,
		metrics: m,
		store:   store,
	}, nil
}

func (e *environment) Close() error {
	return e.backend.Close()
}

// withStore runs fn against a store opened from the global flags.
func withStore(globals *GlobalFlags, fn func(ctx context.Context, store *timeline.Store) error) error {
	ctx := context.Background()
	env, err := openEnvironment(ctx, globals)
	if err != nil {
		return err
	}
	defer env.Close()

	return fn(ctx, env.store)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jsonOutput(globals *GlobalFlags) bool {
	return globals != nil && globals.JSON
}

// eventPatch converts the optional event flags into a patch.
func (f EventFields) eventPatch() timeline.EventPatch {
	patch := timeline.EventPatch{
		Name:        f.Name,
		Date:        f.Date,
		Description: f.Description,
		PictureURL:  f.Picture,
	}
	if f.People != nil {
		patch.People = timeline.Strings(timeline.ParseList(*f.People)...)
	}
	if f.Tags != nil {
		patch.Tags = timeline.Strings(timeline.ParseList(*f.Tags)...)
	}
	return patch
}

// fileDataURI reads a file and encodes it as a base64 data URI.
func fileDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading media file: %w", err)
	}
	mime := http.DetectContentType(data)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// truncate shortens s to n runes for table output.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
