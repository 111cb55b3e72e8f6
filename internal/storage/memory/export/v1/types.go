// Package v1 contains the v1 export format for recorded marker set builds.
package v1

import (
	"time"

	"github.com/OCAP2/dirline/internal/model"
	"github.com/OCAP2/dirline/internal/model/core"
)

// Version is the format version written into every export.
const Version = 1

// Export is the root JSON structure for v1 format
type Export struct {
	Version     int       `json:"version"`
	StartedAt   time.Time `json:"startedAt"`
	ExportedAt  time.Time `json:"exportedAt"`
	BuildCount  int       `json:"buildCount"`
	MarkerCount int       `json:"markerCount"`
	Lines       []Line    `json:"lines"`
}

// Line holds the builds of one line, oldest first
type Line struct {
	ID         string  `json:"id"`
	ErrorCount int     `json:"errorCount"`
	Builds     []Build `json:"builds"`
}

// Build represents one recorded build
type Build struct {
	BuiltAt  time.Time          `json:"builtAt"`
	Viewport core.Viewport      `json:"viewport"`
	Markers  []model.MarkerJSON `json:"markers"`
	Error    string             `json:"error,omitempty"`
}
