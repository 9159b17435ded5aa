// Package config loads holdem-rooms settings from an HCL file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
)

// Config is the complete service configuration.
type Config struct {
	Server  ServerSettings
	Storage StorageSettings
	Table   TableSettings
}

// ServerSettings controls the HTTP listener and logging.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// StorageSettings selects the persistence backend.
type StorageSettings struct {
	Driver string `hcl:"driver,optional"`
	DSN    string `hcl:"dsn,optional"`
}

// TableSettings are engine defaults.
type TableSettings struct {
	DefaultMaxPlayers int    `hcl:"default_max_players,optional"`
	StartingChips     int    `hcl:"starting_chips,optional"`
	Seed              *int64 `hcl:"seed,optional"`
}

// fileConfig mirrors the HCL layout; every block is optional.
type fileConfig struct {
	Server  *ServerSettings  `hcl:"server,block"`
	Storage *StorageSettings `hcl:"storage,block"`
	Table   *TableSettings   `hcl:"table,block"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Storage: StorageSettings{
			Driver: "memory",
		},
		Table: TableSettings{
			DefaultMaxPlayers: 6,
			StartingChips:     1000,
		},
	}
}

// Load reads filename on top of the defaults. A missing file is not an
// error.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.merge(&fc)
	return cfg, nil
}

func (c *Config) merge(fc *fileConfig) {
	if s := fc.Server; s != nil {
		if s.Address != "" {
			c.Server.Address = s.Address
		}
		if s.Port != 0 {
			c.Server.Port = s.Port
		}
		if s.LogLevel != "" {
			c.Server.LogLevel = s.LogLevel
		}
	}
	if s := fc.Storage; s != nil {
		if s.Driver != "" {
			c.Storage.Driver = s.Driver
		}
		if s.DSN != "" {
			c.Storage.DSN = s.DSN
		}
	}
	if t := fc.Table; t != nil {
		if t.DefaultMaxPlayers != 0 {
			c.Table.DefaultMaxPlayers = t.DefaultMaxPlayers
		}
		if t.StartingChips != 0 {
			c.Table.StartingChips = t.StartingChips
		}
		if t.Seed != nil {
			seed := *t.Seed
			c.Table.Seed = &seed
		}
	}
}

// Environment variables read by ApplyEnv.
const (
	EnvAddr          = "HOLDEM_ADDR"
	EnvLogLevel      = "HOLDEM_LOG_LEVEL"
	EnvStorageDriver = "HOLDEM_STORAGE_DRIVER"
	EnvStorageDSN    = "HOLDEM_STORAGE_DSN"
	EnvSeed          = "HOLDEM_SEED"
)

// LoadDotEnv loads variables from a .env file into the process environment
// without overriding ones already set. A missing file is ignored.
func LoadDotEnv(filename string) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(filename); err != nil {
		return fmt.Errorf("load %s: %w", filename, err)
	}
	return nil
}

// ApplyEnv overrides settings from HOLDEM_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvAddr); v != "" {
		if err := c.SetListen(v); err != nil {
			return fmt.Errorf("%s: %w", EnvAddr, err)
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv(EnvStorageDriver); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv(EnvStorageDSN); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Table.Seed = &seed
	}
	return nil
}

// SetListen sets address and port from a host:port string.
func (c *Config) SetListen(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	c.Server.Address = host
	c.Server.Port = p
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}
	switch c.Storage.Driver {
	case "memory":
	case "sqlite", "file":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage driver %s requires a dsn", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
	if c.Table.DefaultMaxPlayers < 2 || c.Table.DefaultMaxPlayers > 23 {
		return fmt.Errorf("default max players must be between 2 and 23")
	}
	if c.Table.StartingChips < 0 {
		return fmt.Errorf("starting chips must not be negative")
	}
	return nil
}

// ListenAddress returns the host:port the server binds to.
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}
