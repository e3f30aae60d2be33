// Package gormstore records sessions into a SQL database through gorm.
// SQLite and Postgres share the same schema; SQLite kept in memory is
// vacuumed to disk when a session ends.
package gormstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/Garsondee/Drone-Fleet/internal/config"
	"github.com/Garsondee/Drone-Fleet/internal/database"
	"github.com/Garsondee/Drone-Fleet/internal/model"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// flushAt is the buffered row count that triggers a batch insert.
const flushAt = 2000

// Backend buffers rows and writes them in batches.
type Backend struct {
	open     func() (*gorm.DB, error)
	dialect  string
	dumpPath string // only for in-memory SQLite

	db      *gorm.DB
	log     zerolog.Logger
	session *model.Session

	ticks  []model.TickStat
	states []model.DroneState
	events []model.FlightEvent
	mu     sync.Mutex
}

// NewSQLite creates a backend writing to a SQLite file, or to memory with a
// dump on EndSession when cfg.Path is empty.
func NewSQLite(cfg config.SQLiteConfig, log zerolog.Logger) *Backend {
	b := &Backend{
		open:    func() (*gorm.DB, error) { return database.OpenSqlite(cfg.Path) },
		dialect: "sqlite",
		log:     log,
	}
	if cfg.Path == "" {
		b.dumpPath = cfg.DumpPath
	}
	return b
}

// NewPostgres creates a backend writing to Postgres.
func NewPostgres(cfg config.DBConfig, log zerolog.Logger) *Backend {
	return &Backend{
		open:    func() (*gorm.DB, error) { return database.OpenPostgres(cfg) },
		dialect: "postgres",
		log:     log,
	}
}

// NewWithDB wraps an already opened connection.
func NewWithDB(db *gorm.DB, log zerolog.Logger) *Backend {
	return &Backend{
		open:    func() (*gorm.DB, error) { return db, nil },
		dialect: db.Dialector.Name(),
		log:     log,
	}
}

// Init connects and migrates the schema.
func (b *Backend) Init() error {
	db, err := b.open()
	if err != nil {
		return fmt.Errorf("failed to open %s DB: %w", b.dialect, err)
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	b.db = db
	b.log.Info().Str("dialect", b.dialect).Msg("Recording database ready")
	return nil
}

// Close releases the connection.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB exposes the connection, mostly for tests.
func (b *Backend) DB() *gorm.DB { return b.db }

func (b *Backend) StartSession(s *model.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.db.Create(s).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.session = s
	b.ticks, b.states, b.events = nil, nil, nil
	return nil
}

// EndSession flushes buffered rows, stores the final session fields and,
// for in-memory SQLite, dumps the database to disk.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return nil
	}
	if err := b.flush(); err != nil {
		return err
	}
	if err := b.db.Save(b.session).Error; err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	b.session = nil

	if b.dumpPath != "" {
		start := time.Now()
		if err := database.DumpToDisk(b.db, b.dumpPath); err != nil {
			return err
		}
		b.log.Debug().Dur("duration", time.Since(start)).Str("path", b.dumpPath).Msg("Dumped memory DB to disk")
	}
	return nil
}

func (b *Backend) RecordTick(t *model.TickStat) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ticks = append(b.ticks, *t)
	return b.maybeFlush()
}

func (b *Backend) RecordDroneState(s *model.DroneState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states = append(b.states, *s)
	return b.maybeFlush()
}

func (b *Backend) RecordEvent(e *model.FlightEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, *e)
	return b.maybeFlush()
}

func (b *Backend) maybeFlush() error {
	if len(b.ticks)+len(b.states)+len(b.events) < flushAt {
		return nil
	}
	return b.flush()
}

func (b *Backend) flush() error {
	if len(b.ticks) > 0 {
		if err := b.db.Create(&b.ticks).Error; err != nil {
			return fmt.Errorf("failed to write tick stats: %w", err)
		}
		b.ticks = b.ticks[:0]
	}
	if len(b.states) > 0 {
		if err := b.db.Create(&b.states).Error; err != nil {
			return fmt.Errorf("failed to write drone states: %w", err)
		}
		b.states = b.states[:0]
	}
	if len(b.events) > 0 {
		if err := b.db.Create(&b.events).Error; err != nil {
			return fmt.Errorf("failed to write flight events: %w", err)
		}
		b.events = b.events[:0]
	}
	return nil
}
