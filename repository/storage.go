package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"voice-capture/entities"
)

// Engine owns the single connection to the embedded database. The pool is
// capped at one open connection, so at most one statement is in flight at a
// time; concurrent repository calls queue in the pool. WAL mode keeps
// readers consistent while that writer works.
type Engine struct {
	mu     sync.Mutex
	sqlDB  *sql.DB
	gormDB *gorm.DB
	path   string
	closed bool
}

// OpenEngine creates the database file (and its directory) if absent,
// enables foreign-key enforcement, write-ahead logging and cache settings,
// and migrates the schema.
func OpenEngine(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		// An empty path would hand sqlite a private in-memory temp database
		// that vanishes at shutdown.
		return nil, fmt.Errorf("%w: empty database path", ErrDatabaseOpenFailed)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, errors.Join(ErrDatabaseOpenFailed, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_cache_size=-20000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Join(ErrDatabaseOpenFailed, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Join(ErrDatabaseOpenFailed, err)
	}

	gormDB, err := gorm.Open(&sqlite.Dialector{Conn: db}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		db.Close()
		return nil, errors.Join(ErrDatabaseOpenFailed, err)
	}

	if err := gormDB.AutoMigrate(
		&entities.RecordingSession{},
		&entities.AudioChunk{},
		&entities.TranscriptSegment{},
	); err != nil {
		db.Close()
		return nil, errors.Join(ErrDatabaseOpenFailed, err)
	}

	zerolog.Ctx(ctx).Info().Str("path", path).Msg("database opened")
	return &Engine{sqlDB: db, gormDB: gormDB, path: path}, nil
}

// DB hands out the serialized gorm handle; every repository routes through
// it, none holds a raw connection of its own.
func (e *Engine) DB() *gorm.DB {
	return e.gormDB
}

// Exec runs one parameterized statement through the engine.
func (e *Engine) Exec(ctx context.Context, query string, args ...interface{}) error {
	return translate(e.gormDB.WithContext(ctx).Exec(query, args...).Error)
}

// Close releases the connection. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.sqlDB.Close()
}
