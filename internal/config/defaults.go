package config

import "time"

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:            "sqlite",
			Path:              "~/.config/timelines",
			SQLiteFile:        "timelines.db",
			SQLiteJournalMode: "wal",
			PostgresDSN:       "",
			SlotKey:           "timeline-app-data",
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8722,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
