// Package store is the narrow read/write adapter to the persisted
// monitor, log, and alert records (§6 "Store adapter").
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Dialect constants.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

//go:embed migrations/sqlite/*.sql
var sqliteMigrationFS embed.FS

//go:embed migrations/postgres/*.sql
var postgresMigrationFS embed.FS

// ErrNotFound is returned when a lookup by ID finds no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write would violate a uniqueness
// invariant (I4: at most one AlertSettings per monitor).
var ErrConflict = errors.New("conflict")

// Config selects and configures the backing database.
type Config struct {
	Driver string // "sqlite" or "postgres"
	Path   string // sqlite file path
	URL    string // postgres connection URL
}

// Store wraps a *sql.DB with dialect-aware query rebinding.
type Store struct {
	db      *sql.DB
	dialect string
}

// Open connects, pings, and migrates the store.
func Open(cfg Config) (*Store, error) {
	var db *sql.DB
	var err error
	var dialect string

	switch cfg.Driver {
	case DialectPostgres, "postgresql":
		dialect = DialectPostgres
		db, err = sql.Open("postgres", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
	default:
		dialect = DialectSQLite
		db, err = sql.Open("sqlite3", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dialect == DialectSQLite {
		// SQLite allows one writer. Pinning the pool to one connection
		// also keeps an in-memory database (":memory:") from handing
		// separate connections their own isolated database.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, err
		}
	}

	s := &Store{db: db, dialect: dialect}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Dialect() string { return s.dialect }

func (s *Store) IsPostgres() bool { return s.dialect == DialectPostgres }

// rebind converts ? placeholders to $1, $2, ... for PostgreSQL. SQLite
// queries pass through unchanged.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var out []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			out = append(out, '$')
			out = append(out, []byte(fmt.Sprintf("%d", n))...)
			n++
		} else {
			out = append(out, query[i])
		}
	}
	return string(out)
}

func (s *Store) migrate() error {
	var embedFS embed.FS
	var migrationPath string
	var dialect goose.Dialect

	switch s.dialect {
	case DialectPostgres:
		embedFS = postgresMigrationFS
		migrationPath = "migrations/postgres"
		dialect = goose.DialectPostgres
	default:
		embedFS = sqliteMigrationFS
		migrationPath = "migrations/sqlite"
		dialect = goose.DialectSQLite3
	}

	migrationsDir, err := fs.Sub(embedFS, migrationPath)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(dialect, s.db, migrationsDir)
	if err != nil {
		return err
	}

	_, err = provider.Up(context.Background())
	return err
}
