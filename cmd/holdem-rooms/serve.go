package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-rooms/internal/config"
	"github.com/lox/holdem-rooms/internal/hub"
	"github.com/lox/holdem-rooms/internal/randutil"
	"github.com/lox/holdem-rooms/internal/server"
	"github.com/lox/holdem-rooms/internal/store"
	"github.com/lox/holdem-rooms/internal/table"
)

const shutdownTimeout = 5 * time.Second

// ServeCmd runs the server. Flags override the environment, which overrides
// the config file.
type ServeCmd struct {
	Config   string `short:"c" default:"holdem-rooms.hcl" help:"Path to HCL configuration file"`
	EnvFile  string `default:".env" help:"Path to an optional .env file"`
	Addr     string `short:"a" help:"Address to listen on as host:port (overrides config)"`
	LogLevel string `short:"l" help:"Log level: debug, info, warn or error (overrides config)"`
	Storage  string `help:"Storage driver: memory, sqlite or file (overrides config)"`
	DSN      string `help:"Storage DSN, a sqlite path or a directory (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed for deck shuffles (optional)"`
}

func (c *ServeCmd) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(c.EnvFile); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if c.Addr != "" {
		if err := cfg.SetListen(c.Addr); err != nil {
			return nil, err
		}
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Storage != "" {
		cfg.Storage.Driver = c.Storage
	}
	if c.DSN != "" {
		cfg.Storage.DSN = c.DSN
	}
	if c.Seed != nil {
		cfg.Table.Seed = c.Seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

func (c *ServeCmd) Run() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Server.LogLevel)

	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.DSN, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("Failed to close store", "error", err)
		}
	}()

	rng, seed := randutil.Seeded(cfg.Table.Seed)
	logger.Info("Using RNG seed", "seed", seed, "deterministic", cfg.Table.Seed != nil)

	h := hub.New(logger)
	engine := table.NewEngine(st, h, logger,
		table.WithRand(rng),
		table.WithStartingChips(cfg.Table.StartingChips),
		table.WithDefaultMaxPlayers(cfg.Table.DefaultMaxPlayers),
	)
	srv := server.New(engine, h, logger)

	ln, err := net.Listen("tcp", cfg.ListenAddress())
	if err != nil {
		return err
	}
	logger.Info("Starting holdem-rooms",
		"addr", ln.Addr().String(),
		"storage", cfg.Storage.Driver,
		"default_max_players", cfg.Table.DefaultMaxPlayers,
		"starting_chips", cfg.Table.StartingChips)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ln)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
