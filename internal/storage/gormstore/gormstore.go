// Package gormstore implements the storage.Backend interface using GORM
// with an internal queue and a background DB writer goroutine.
package gormstore

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OCAP2/dirline/internal/database"
	"github.com/OCAP2/dirline/internal/model"
	"github.com/OCAP2/dirline/internal/model/convert"
	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/OCAP2/dirline/internal/queue"

	"gorm.io/gorm"
)

// DefaultFlushInterval is how often queued builds are written.
const DefaultFlushInterval = 2 * time.Second

// ErrClosed is returned when recording into a closed backend.
var ErrClosed = errors.New("snapshot store closed")

// Dependencies holds all dependencies for the GORM snapshot store.
type Dependencies struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	FlushInterval time.Duration
	BatchSize     int
}

// Backend implements storage.Backend with queued batch writes.
type Backend struct {
	deps     Dependencies
	builds   *queue.Queue[model.BuildRecord]
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu     sync.Mutex
	ready  bool
	closed bool
}

// New creates a new GORM snapshot store.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = 500
	}
	return &Backend{
		deps:   deps,
		builds: queue.New[model.BuildRecord](),
	}
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.deps.DB == nil {
		return fmt.Errorf("no database")
	}
	if b.ready {
		return nil
	}
	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.ready = true
	b.closed = false

	b.wg.Add(1)
	go b.writeLoop()
	return nil
}

// Close stops the writer and flushes anything still queued.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed || !b.ready {
		b.closed = true
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.stopChan)
	b.mu.Unlock()

	b.wg.Wait()
	return errors.Join(b.Flush(), database.Close(b.deps.DB))
}

// RecordBuild queues the snapshot for the next write.
func (b *Backend) RecordBuild(s *core.BuildSnapshot) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	rec, err := convert.SnapshotToRecord(s)
	if err != nil {
		return err
	}
	b.builds.Push(rec)
	return nil
}

// Pending returns the number of queued, unwritten builds.
func (b *Backend) Pending() int {
	return b.builds.Len()
}

// Flush writes every queued build. Rows that fail to write are put back.
func (b *Backend) Flush() error {
	items := b.builds.Drain()
	if len(items) == 0 {
		return nil
	}

	start := time.Now()
	if err := b.deps.DB.CreateInBatches(items, b.deps.BatchSize).Error; err != nil {
		b.builds.Requeue(items)
		return fmt.Errorf("writing %d build records: %w", len(items), err)
	}
	b.deps.Logger.Debug("Wrote build records",
		"count", len(items),
		"duration", time.Since(start))
	return nil
}

// Records loads the stored builds of a line, oldest first.
func (b *Backend) Records(lineID string) ([]model.BuildRecord, error) {
	var out []model.BuildRecord
	err := b.deps.DB.
		Where("line_id = ?", lineID).
		Order("built_at asc, id asc").
		Find(&out).Error
	return out, err
}

func (b *Backend) writeLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.deps.Logger.Error("Failed to write build records", "error", err)
			}
		}
	}
}
