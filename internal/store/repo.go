package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrClosed is returned by operations on a closed KV.
var ErrClosed = errors.New("store closed")

// KV is a string key-value store. A missing key is reported with ok=false
// and a nil error.
type KV interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the underlying connection.
	Close() error
}

// Driver names a KV backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMongo    Driver = "mongo"
	DriverMemory   Driver = "memory"
)

// ParseDriver converts a config string into a Driver. Empty means sqlite.
func ParseDriver(s string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DriverSQLite, nil
	case DriverSQLite, DriverPostgres, DriverMongo, DriverMemory:
		return d, nil
	}
	return "", fmt.Errorf("unsupported storage driver %q", s)
}

// Options selects and configures a KV backend.
type Options struct {
	// Driver is the backend to open.
	Driver Driver

	// Path is the SQLite database file. Empty resolves DefaultDBPath.
	Path string

	// DSN is the connection string for postgres or mongo.
	DSN string

	// Database is the mongo database name.
	Database string
}

// OpenKV opens the backend selected by opts.
func OpenKV(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		path := opts.Path
		if path == "" {
			p, err := DefaultDBPath()
			if err != nil {
				return nil, err
			}
			path = p
		} else if err := ensureDir(path); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		return Open(path)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DSN)
	case DriverMongo:
		return OpenMongo(ctx, opts.DSN, opts.Database)
	case DriverMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", opts.Driver)
}
