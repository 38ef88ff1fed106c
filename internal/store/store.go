package store

import (
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store persists the business state: administrators, the revoked-token
// ledger, products, companions, orders, and weekly schedules.
//
// The default backend is SQLite (zero configuration, single file); a
// Postgres or MySQL DSN can be supplied instead for managed deployments.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Config selects the backing database. Driver is one of "sqlite",
// "postgres", "mysql". For sqlite, DSN is a data directory (empty string
// means in-memory); for the others it is a connection string.
type Config struct {
	Driver string
	DSN    string
}

// Open connects to the configured database and runs migrations. Pass a
// zero-value Config for an in-memory SQLite store.
func Open(cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case "sqlite":
		dsn := ":memory:?_journal_mode=WAL"
		if cfg.DSN != "" {
			if err := os.MkdirAll(cfg.DSN, 0755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
			dsn = filepath.Join(cfg.DSN, "comanda.db") + "?_journal_mode=WAL&_busy_timeout=5000"
		}
		db, err = sqlx.Connect("sqlite", dsn)
		if err == nil {
			db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
			if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
				err = fmt.Errorf("enable foreign keys: %w", err)
			}
		}
	case "postgres":
		db, err = sqlx.Connect("pgx", cfg.DSN)
	case "mysql":
		db, err = sqlx.Connect("mysql", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the underlying database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind converts `?` placeholders to the driver's bindvar style.
func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}
