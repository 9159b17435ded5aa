package store

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-rooms/internal/table"
)

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Open returns the store selected by driver. dsn is the database path for
// sqlite and the root directory for file; memory ignores it.
func Open(driver, dsn string, logger *log.Logger) (table.Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverSQLite:
		return OpenSQLite(dsn, logger)
	case DriverFile:
		return OpenFile(dsn, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
