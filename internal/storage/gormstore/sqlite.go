package gormstore

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OCAP2/dirline/internal/database"

	"gorm.io/gorm"
)

// SQLiteConfig holds configuration for the SQLite snapshot store.
type SQLiteConfig struct {
	DumpInterval time.Duration
	DumpPath     string // target of VACUUM INTO dumps, empty keeps the DB in memory only
}

// SQLiteBackend keeps builds in an in-memory SQLite database and dumps it to
// disk periodically and on Close.
type SQLiteBackend struct {
	*Backend
	db       *gorm.DB
	cfg      SQLiteConfig
	log      *slog.Logger
	stopDump chan struct{}
	dumpWG   sync.WaitGroup
}

// NewSQLite creates a new SQLite snapshot store.
func NewSQLite(cfg SQLiteConfig, log *slog.Logger) (*SQLiteBackend, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := database.OpenSQLite("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	return &SQLiteBackend{
		Backend:  New(Dependencies{DB: db, Logger: log}),
		db:       db,
		cfg:      cfg,
		log:      log,
		stopDump: make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *SQLiteBackend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.dumpWG.Add(1)
		go b.dumpLoop()
	}
	return nil
}

// Close stops the dump goroutine, flushes, writes a final dump and closes
// the database.
func (b *SQLiteBackend) Close() error {
	b.Backend.mu.Lock()
	open := b.Backend.ready && !b.Backend.closed
	b.Backend.mu.Unlock()
	if !open {
		return b.Backend.Close()
	}

	close(b.stopDump)
	b.dumpWG.Wait()
	flushErr := b.Flush()

	var dumpErr error
	if b.cfg.DumpPath != "" {
		dumpErr = database.DumpToDisk(b.db, b.cfg.DumpPath)
	}
	return errors.Join(flushErr, dumpErr, b.Backend.Close())
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
func (b *SQLiteBackend) dumpLoop() {
	defer b.dumpWG.Done()

	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopDump:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.Flush(); err != nil {
				b.log.Error("Failed to write build records before dump", "error", err)
				continue
			}
			if err := database.DumpToDisk(b.db, b.cfg.DumpPath); err != nil {
				b.log.Error("Error dumping snapshot DB to disk", "error", err)
			} else {
				b.log.Debug("Dumped snapshot DB to disk", "duration", time.Since(start))
			}
		}
	}
}
