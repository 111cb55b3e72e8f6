// internal/model/core/snapshot.go
package core

import "time"

// BuildSnapshot records the outcome of one marker set build.
type BuildSnapshot struct {
	LineID   string            `json:"lineId"`
	BuiltAt  time.Time         `json:"builtAt"`
	Viewport Viewport          `json:"viewport"`
	Markers  []*MarkerInstance `json:"markers"`
	Error    string            `json:"error,omitempty"`
}
