// internal/model/core/types.go
package core

// Point2D is a coordinate in either map space or screen space. A single
// computation never mixes the two.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Path is an ordered sequence of points. Paths with fewer than 2 points carry
// no segments.
type Path []Point2D

// GeometryKind distinguishes open polylines from polygon outlines.
type GeometryKind string

const (
	KindPolyline GeometryKind = "polyline"
	KindPolygon  GeometryKind = "polygon"
)

// LineGeometry is one or more paths (or rings) in map space.
type LineGeometry struct {
	SRID  int          `json:"srid"`
	Kind  GeometryKind `json:"kind"`
	Paths []Path       `json:"paths"`
}

// Extent is a map-space rectangle.
type Extent struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
	SRID int     `json:"srid"`
}

// Width returns the horizontal span of the extent.
func (e Extent) Width() float64 { return e.XMax - e.XMin }

// Height returns the vertical span of the extent.
func (e Extent) Height() float64 { return e.YMax - e.YMin }

// Viewport is a snapshot of the visible map area and its pixel dimensions.
type Viewport struct {
	Extent   Extent  `json:"extent"`
	WidthPx  float64 `json:"widthPx"`
	HeightPx float64 `json:"heightPx"`
}

// ScreenBounds is a screen-space rectangle. Producers do not guarantee
// Min <= Max; use Normalize before comparing.
type ScreenBounds struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// Normalize returns the bounds with min and max swapped where needed.
func (b ScreenBounds) Normalize() ScreenBounds {
	if b.XMin > b.XMax {
		b.XMin, b.XMax = b.XMax, b.XMin
	}
	if b.YMin > b.YMax {
		b.YMin, b.YMax = b.YMax, b.YMin
	}
	return b
}

// Contains reports whether p lies inside the bounds, edges included.
func (b ScreenBounds) Contains(p Point2D) bool {
	n := b.Normalize()
	return p.X >= n.XMin && p.X <= n.XMax && p.Y >= n.YMin && p.Y <= n.YMax
}

// SpacingConfig controls the gap between consecutive direction markers.
type SpacingConfig struct {
	MinGapPx float64 `json:"minGapPx" mapstructure:"minGapPx"`
}
