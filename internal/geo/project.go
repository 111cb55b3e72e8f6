package geo

import (
	"errors"
	"fmt"

	"github.com/OCAP2/dirline/internal/model/core"
)

// ErrInvalidViewport is returned when the viewport has no area to map onto.
var ErrInvalidViewport = errors.New("invalid viewport")

// ScreenGeometry is a LineGeometry after projection to pixels.
type ScreenGeometry struct {
	Kind  core.GeometryKind
	Paths []core.Path
}

// Project converts every path of g to screen space using vp. g must already
// share the viewport's spatial reference.
func Project(g core.LineGeometry, vp core.Viewport) (ScreenGeometry, error) {
	if err := Validate(g); err != nil {
		return ScreenGeometry{}, err
	}
	if err := checkViewport(vp); err != nil {
		return ScreenGeometry{}, err
	}

	out := ScreenGeometry{Kind: g.Kind, Paths: make([]core.Path, len(g.Paths))}
	for i, path := range g.Paths {
		sp := make(core.Path, len(path))
		for j, p := range path {
			sp[j] = ToScreen(p, vp)
		}
		out.Paths[i] = sp
	}
	return out, nil
}

// ProjectExtent returns the viewport's own extent in screen space.
func ProjectExtent(vp core.Viewport) core.ScreenBounds {
	e := vp.Extent
	lo := ToScreen(core.Point2D{X: e.XMin, Y: e.YMin}, vp)
	hi := ToScreen(core.Point2D{X: e.XMax, Y: e.YMax}, vp)
	return core.ScreenBounds{XMin: lo.X, YMin: lo.Y, XMax: hi.X, YMax: hi.Y}
}

// ToScreen maps a map point to pixels. Screen y grows downwards.
func ToScreen(p core.Point2D, vp core.Viewport) core.Point2D {
	e := vp.Extent
	return core.Point2D{
		X: (p.X - e.XMin) * vp.WidthPx / e.Width(),
		Y: (e.YMax - p.Y) * vp.HeightPx / e.Height(),
	}
}

// ToMap is the inverse of ToScreen.
func ToMap(p core.Point2D, vp core.Viewport) core.Point2D {
	e := vp.Extent
	return core.Point2D{
		X: e.XMin + p.X*e.Width()/vp.WidthPx,
		Y: e.YMax - p.Y*e.Height()/vp.HeightPx,
	}
}

// Contains reports whether the map point lies inside the visible extent.
func Contains(vp core.Viewport, p core.Point2D) bool {
	e := vp.Extent
	return p.X >= e.XMin && p.X <= e.XMax && p.Y >= e.YMin && p.Y <= e.YMax
}

func checkViewport(vp core.Viewport) error {
	e := vp.Extent
	if e.Width() <= 0 || e.Height() <= 0 {
		return fmt.Errorf("%w: empty extent %v", ErrInvalidViewport, e)
	}
	if vp.WidthPx <= 0 || vp.HeightPx <= 0 {
		return fmt.Errorf("%w: size %vx%v", ErrInvalidViewport, vp.WidthPx, vp.HeightPx)
	}
	return nil
}
