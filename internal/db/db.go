package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/op-bracket/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DSN builds the SQLite connection string. Transactions start with
// BEGIN IMMEDIATE so two writers touching the same match row queue up
// instead of overwriting each other.
func DSN(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_txlock=immediate&_busy_timeout=%d",
		path, busyTimeout.Milliseconds())
}

func InitDB(path string, busyTimeout time.Duration) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", DSN(path, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	return db, nil
}

// OpenMemory opens a private in-memory database. It is pinned to a single
// connection because every new SQLite memory connection is a fresh database.
func OpenMemory() (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
