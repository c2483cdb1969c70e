package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	// ErrMissingCharacter is returned when a match lacks a character field.
	ErrMissingCharacter = errors.New("match is missing a character")
	// ErrPlayerExists is returned when registering a duplicate player id.
	ErrPlayerExists = errors.New("player already exists")
)

// DB wraps a sql.DB for the match store.
type DB struct {
	conn   *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// Open opens (or creates) the SQLite database at the given path and migrates
// it to the latest schema. Use ":memory:" for a throwaway store.
func Open(path string, logger zerolog.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// One connection: SQLite has a single writer, and a shared connection
	// keeps ":memory:" databases alive across calls.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(conn, logger); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	logger.Debug().Str("path", path).Msg("store opened")
	return &DB{conn: conn, logger: logger, now: time.Now}, nil
}

func migrate(conn *sql.DB, logger zerolog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(conn, "migrations")
}

// gooseLogger routes goose output to zerolog at debug level.
type gooseLogger struct {
	l zerolog.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.l.Debug().Msgf(format, v...)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.l.Fatal().Msgf(format, v...)
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
