package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// kvTable is the table backing the SQL stores.
const kvTable = "kv"

// Store is a KV backed by SQLite through ent's SQL driver.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver

	mu     sync.Mutex
	closed bool
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates the kv table.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)

	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db, drv: drv}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Get implements KV.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s.isClosed() {
		return "", false, ErrClosed
	}
	query, args := selectValue(dialect.SQLite, key)

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", false, rows.Err()
	}
	var value string
	if err := rows.Scan(&value); err != nil {
		return "", false, fmt.Errorf("scan %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements KV.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.isClosed() {
		return ErrClosed
	}
	query, args := upsertValue(dialect.SQLite, key, value, time.Now().UTC())
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Remove implements KV.
func (s *Store) Remove(ctx context.Context, key string) error {
	if s.isClosed() {
		return ErrClosed
	}
	query, args := deleteValue(dialect.SQLite, key)
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.drv.Close()
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func migrate(ctx context.Context, drv *entsql.Driver) error {
	query, args := createTable(dialect.SQLite)
	return drv.Exec(ctx, query, args, nil)
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// createTable returns the kv table DDL for the given dialect. ent's builder
// has no CREATE TABLE form, so the statement is written out.
func createTable(d string) (string, []any) {
	timeType := "DATETIME"
	if d == dialect.Postgres {
		timeType = "TIMESTAMPTZ"
	}
	query := "CREATE TABLE IF NOT EXISTS " + kvTable + " (" +
		"key TEXT NOT NULL PRIMARY KEY, " +
		"value TEXT NOT NULL, " +
		"updated_at " + timeType + " NOT NULL)"
	return query, nil
}

func selectValue(d, key string) (string, []any) {
	return entsql.Dialect(d).
		Select("value").
		From(entsql.Table(kvTable)).
		Where(entsql.EQ("key", key)).
		Query()
}

func upsertValue(d, key, value string, at time.Time) (string, []any) {
	return entsql.Dialect(d).
		Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, at).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
}

func deleteValue(d, key string) (string, []any) {
	return entsql.Dialect(d).
		Delete(kvTable).
		Where(entsql.EQ("key", key)).
		Query()
}

// DefaultDBPath resolves the database file path in priority order:
// 1. FAULTDRILL_DB environment variable
// 2. $XDG_DATA_HOME/faultdrill/faultdrill.db
// 3. ~/.local/share/faultdrill/faultdrill.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("FAULTDRILL_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "faultdrill", "faultdrill.db")
	return p, ensureDir(p)
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
