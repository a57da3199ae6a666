// Package db opens the design-flow database and manages schema migration.
package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options selects the database backend. SQLite is the default; MySQL is
// available for shared deployments.
type Options struct {
	Driver string // "sqlite" or "mysql"
	Path   string // sqlite file path (":memory:" for tests)
	DSN    string // mysql DSN, e.g. "user:pass@tcp(host:3306)/designflow?parseTime=true"
}

// Connect opens a GORM connection for the given options.
func Connect(opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	switch opts.Driver {
	case "", "sqlite":
		path := opts.Path
		if path == "" {
			path = "designflow.db"
		}
		conn, err := gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite %s: %w", path, err)
		}
		return conn, nil
	case "mysql":
		conn, err := gorm.Open(mysql.Open(opts.DSN), cfg)
		if err != nil {
			return nil, fmt.Errorf("db: connect mysql: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("db: unknown driver %q", opts.Driver)
	}
}
