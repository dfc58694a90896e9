package cli

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/runnerr0/timelines/internal/server"
	"github.com/runnerr0/timelines/internal/storage"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.Ephemeral {
		cfg.Storage.Driver = storage.DriverMemory
	}

	env, err := openEnvironmentWith(ctx, cfg, c.globals)
	if err != nil {
		return err
	}
	defer env.Close()

	handler := server.NewRouter(server.Options{
		Store:   env.store,
		Metrics: env.metrics,
		Logger:  env.log,
	})

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	env.log.Info("serving timelines", "version", c.version, "driver", cfg.Storage.Driver, "ephemeral", c.Ephemeral)

	return server.ListenAndServe(ctx, addr, handler, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, env.log)
}
