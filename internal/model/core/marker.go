// internal/model/core/marker.go
package core

import (
	"math"
	"sync/atomic"
)

// MarkerRole says where in the marker set an instance sits.
type MarkerRole string

const (
	RoleStart     MarkerRole = "start"
	RoleDirection MarkerRole = "direction"
	RoleEnd       MarkerRole = "end"
)

// SymbolClass is the style class attached to every placed marker.
const SymbolClass = "dls-symbol"

// MarkerInstance is one placed, rotated symbol belonging to a line.
type MarkerInstance struct {
	LineID  string            `json:"lineId"`
	Ordinal int               `json:"ordinal"`
	Role    MarkerRole        `json:"role"`
	Class   string            `json:"class"`
	Screen  Point2D           `json:"screen"`
	Map     Point2D           `json:"map"`
	Marker  *MarkerDescriptor `json:"marker"`
	Hidden  bool              `json:"hidden,omitempty"`

	// opacity bits, written by fade timers
	opacity atomic.Uint64
}

// NewMarkerInstance returns a fully visible instance.
func NewMarkerInstance(lineID string, role MarkerRole, screen, mapPt Point2D, m *MarkerDescriptor) *MarkerInstance {
	mi := &MarkerInstance{
		LineID: lineID,
		Role:   role,
		Class:  SymbolClass,
		Screen: screen,
		Map:    mapPt,
		Marker: m,
	}
	mi.SetOpacity(1)
	return mi
}

// Opacity returns the current opacity in [0, 1].
func (m *MarkerInstance) Opacity() float64 {
	return math.Float64frombits(m.opacity.Load())
}

// SetOpacity clamps o into [0, 1] and stores it.
func (m *MarkerInstance) SetOpacity(o float64) {
	switch {
	case o < 0 || math.IsNaN(o):
		o = 0
	case o > 1:
		o = 1
	}
	m.opacity.Store(math.Float64bits(o))
}
