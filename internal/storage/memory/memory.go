// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/OCAP2/dirline/internal/cache"
	"github.com/OCAP2/dirline/internal/config"
	"github.com/OCAP2/dirline/internal/model/core"
	v1 "github.com/OCAP2/dirline/internal/storage/memory/export/v1"
)

// Backend keeps build snapshots in memory and exports them to JSON on Close
type Backend struct {
	cfg     config.MemoryConfig
	lines   *cache.Store[*v1.LineRecord] // keyed by line ID, first-seen order
	started time.Time

	lastExportPath string
	closed         bool
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		lines:   cache.New[*v1.LineRecord](),
		started: time.Now().UTC(),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = false
	return nil
}

// Close exports every recorded build when an output directory is set
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if b.cfg.OutputDir == "" || b.lines.Len() == 0 {
		return nil
	}
	return b.exportJSON()
}

// RecordBuild copies the snapshot, marker opacities included.
func (b *Backend) RecordBuild(s *core.BuildSnapshot) error {
	if s == nil {
		return fmt.Errorf("nil snapshot")
	}
	build := v1.NewBuild(s)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("backend closed")
	}

	record, ok := b.lines.Get(s.LineID)
	if !ok {
		record = &v1.LineRecord{LineID: s.LineID}
		b.lines.Set(s.LineID, record)
	}
	record.Builds = append(record.Builds, build)
	return nil
}

// Builds returns the builds recorded for a line, oldest first.
func (b *Backend) Builds(lineID string) []v1.Build {
	b.mu.RLock()
	defer b.mu.RUnlock()

	record, ok := b.lines.Get(lineID)
	if !ok {
		return nil
	}
	out := make([]v1.Build, len(record.Builds))
	copy(out, record.Builds)
	return out
}

// LineIDs returns the recorded lines in first-seen order.
func (b *Backend) LineIDs() []string {
	return b.lines.Keys()
}

// ExportedFilePath returns the path of the last export, if any.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
