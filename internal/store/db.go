// Package store persists grid histories in SQLite.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/gridhist/internal/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// schemaVersion is the number of the newest file in migrations/.
const schemaVersion uint = 1

// DB owns the SQLite connection for the history store.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens (creating if needed) the database at path and migrates it to
// the current schema. An existing database is copied to path+".bak" before
// any pending migration runs.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	_, statErr := os.Stat(path)
	existed := statErr == nil

	log.Debug(log.CatStore, "Opening database", "path", path)
	conn, err := sql.Open("sqlite3", "file:"+path+
		"?_pragma=journal_mode(wal)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(existed); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Info(log.CatStore, "Connected to database", "path", path)
	return db, nil
}

func (db *DB) migrate(existed bool) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	defer func() { _ = src.Close() }()

	driver, err := sqlite.WithInstance(db.conn, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	// m is not closed: closing it would close db.conn through the driver.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		version = 0
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case dirty:
		return fmt.Errorf("database schema is dirty at version %d; restore %s", version, db.backupPath())
	}

	if version >= schemaVersion {
		return nil
	}
	if existed {
		if err := db.backup(); err != nil {
			return err
		}
	}

	log.Info(log.CatStore, "Migrating database", "from", version, "to", schemaVersion)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (db *DB) backupPath() string {
	return db.path + ".bak"
}

// backup writes a consistent copy of the database next to it.
func (db *DB) backup() error {
	dst := db.backupPath()
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old backup: %w", err)
	}
	if _, err := db.conn.Exec("VACUUM INTO ?", dst); err != nil {
		return fmt.Errorf("failed to back up database: %w", err)
	}
	log.Info(log.CatStore, "Backed up database before migration", "path", dst)
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}
