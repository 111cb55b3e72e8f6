// Package surface is an in-memory rendering surface that groups markers per
// line and renders them as SVG.
package surface

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/OCAP2/dirline/internal/geo"
	"github.com/OCAP2/dirline/internal/model/core"
)

// LineClass tags the outline of lines whose markers are animated.
const LineClass = "dls-line"

// ErrInvalidMarker is returned by Add for markers without an owning line.
var ErrInvalidMarker = errors.New("invalid marker")

// LineStyle is how a line outline is stroked.
type LineStyle struct {
	Color    string
	Width    float64
	Animated bool
}

type lineShape struct {
	geometry core.LineGeometry
	style    LineStyle
	hidden   bool
}

// SVG holds lines and their marker groups for one view.
type SVG struct {
	mu       sync.RWMutex
	viewport core.Viewport
	order    []string
	lines    map[string]lineShape
	groups   map[string][]*core.MarkerInstance
}

// New creates an empty surface showing vp.
func New(vp core.Viewport) *SVG {
	return &SVG{
		viewport: vp,
		lines:    make(map[string]lineShape),
		groups:   make(map[string][]*core.MarkerInstance),
	}
}

// SetViewport changes the visible area.
func (s *SVG) SetViewport(vp core.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = vp
}

// Viewport returns the current visible area.
func (s *SVG) Viewport() core.Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// VisibleContains reports whether a map point is inside the visible extent.
func (s *SVG) VisibleContains(p core.Point2D) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return geo.Contains(s.viewport, p)
}

// SetLine records the outline drawn beneath a line's markers.
func (s *SVG) SetLine(id string, g core.LineGeometry, style LineStyle, hidden bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lines[id]; !ok && !slices.Contains(s.order, id) {
		s.order = append(s.order, id)
	}
	s.lines[id] = lineShape{geometry: g, style: style, hidden: hidden}
}

// DeleteLine removes a line outline together with its markers.
func (s *SVG) DeleteLine(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lines, id)
	delete(s.groups, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
}

// Add attaches m to its line's group.
func (s *SVG) Add(m *core.MarkerInstance) error {
	if m == nil || m.LineID == "" {
		return fmt.Errorf("%w: missing line id", ErrInvalidMarker)
	}
	if m.Marker == nil {
		return fmt.Errorf("%w: line %s ordinal %d has no symbol", ErrInvalidMarker, m.LineID, m.Ordinal)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.order, m.LineID) {
		s.order = append(s.order, m.LineID)
	}
	s.groups[m.LineID] = append(s.groups[m.LineID], m)
	return nil
}

// RemoveLine destroys the markers grouped under id. The outline stays.
func (s *SVG) RemoveLine(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, id)
}

// Markers returns the markers currently attached for a line.
func (s *SVG) Markers(lineID string) []*core.MarkerInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.groups[lineID])
}

// Query returns every marker carrying class, in line then ordinal order.
func (s *SVG) Query(class string) []*core.MarkerInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.MarkerInstance
	for _, id := range s.order {
		for _, m := range s.groups[id] {
			if m.Class == class {
				out = append(out, m)
			}
		}
	}
	return out
}

// Count returns the number of attached markers across all lines.
func (s *SVG) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, g := range s.groups {
		n += len(g)
	}
	return n
}
