// Package planner computes where direction markers go along a screen-space
// segment and how they are rotated.
package planner

import (
	"math"

	"github.com/OCAP2/dirline/internal/model/core"
)

// epsilon absorbs floating point drift when the last step lands on the
// segment end point.
const epsilon = 1e-9

// AngleOf returns the rotation in degrees, in [0, 360), that turns a
// left-pointing symbol to follow the segment from p1 to p2.
func AngleOf(p1, p2 core.Point2D) float64 {
	deg := math.Atan2(p2.Y-p1.Y, p2.X-p1.X)*180/math.Pi - 180
	return normalizeDegrees(deg)
}

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// PlacementsAlong walks from p1 towards p2 in steps of gap. The walk ends at
// the first step outside the segment's bounding box; steps outside bounds
// are skipped without ending the walk. Segments shorter than gap yield nil.
func PlacementsAlong(p1, p2 core.Point2D, bounds core.ScreenBounds, gap float64) []core.Point2D {
	if gap <= 0 || math.IsNaN(gap) {
		return nil
	}

	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	length := math.Hypot(dx, dy)
	if length < gap {
		return nil
	}

	segment := core.ScreenBounds{
		XMin: math.Min(p1.X, p2.X) - epsilon,
		YMin: math.Min(p1.Y, p2.Y) - epsilon,
		XMax: math.Max(p1.X, p2.X) + epsilon,
		YMax: math.Max(p1.Y, p2.Y) + epsilon,
	}
	visible := bounds.Normalize()

	stepX, stepY := dx/length*gap, dy/length*gap

	var points []core.Point2D
	for k := 1; ; k++ {
		tp := core.Point2D{X: p1.X + float64(k)*stepX, Y: p1.Y + float64(k)*stepY}
		if !segment.Contains(tp) {
			break
		}
		if visible.Contains(tp) {
			points = append(points, tp)
		}
	}
	return points
}

// Segment is one consecutive point pair of a screen path with its plan.
type Segment struct {
	From, To   core.Point2D
	Angle      float64
	Placements []core.Point2D
}

// PlanPath plans every segment of path in order. Paths with fewer than two
// points produce nothing.
func PlanPath(path core.Path, bounds core.ScreenBounds, gap float64) []Segment {
	if len(path) < 2 {
		return nil
	}
	segments := make([]Segment, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		p1, p2 := path[i], path[i+1]
		segments = append(segments, Segment{
			From:       p1,
			To:         p2,
			Angle:      AngleOf(p1, p2),
			Placements: PlacementsAlong(p1, p2, bounds, gap),
		})
	}
	return segments
}
