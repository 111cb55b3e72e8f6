// internal/storage/storage.go
package storage

import "github.com/OCAP2/dirline/internal/model/core"

// Backend is the interface all snapshot stores must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// RecordBuild stores the outcome of one marker set build. The snapshot
	// may be reused by the caller once RecordBuild returns.
	RecordBuild(s *core.BuildSnapshot) error
}

// Exportable is an optional interface for stores that write a file on Close.
type Exportable interface {
	ExportedFilePath() string
}
