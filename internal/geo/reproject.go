package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/wroge/wgs84"
)

// ErrProjection is returned when a geometry cannot be brought into the
// viewport's spatial reference.
var ErrProjection = errors.New("cannot project geometry")

// Well-known spatial references.
const (
	SRIDWGS84       = 4326
	SRIDWebMercator = 3857
)

// Reprojector moves geometries between spatial references through wgs84.
// Only SRIDs registered with it are considered reachable.
type Reprojector struct {
	supported map[int]struct{}
}

// NewReprojector accepts WGS84 and Web Mercator plus any extra EPSG codes.
func NewReprojector(extraSRIDs ...int) *Reprojector {
	r := &Reprojector{supported: map[int]struct{}{
		SRIDWGS84:       {},
		SRIDWebMercator: {},
	}}
	for _, srid := range extraSRIDs {
		r.supported[srid] = struct{}{}
	}
	return r
}

// CanProject reports whether a transform between the two SRIDs exists.
func (r *Reprojector) CanProject(from, to int) bool {
	if from == to || from == 0 || to == 0 {
		return true
	}
	_, okFrom := r.supported[from]
	_, okTo := r.supported[to]
	return okFrom && okTo
}

// Reproject returns g expressed in the target SRID. A zero SRID on either
// side is treated as "already matching".
func (r *Reprojector) Reproject(g core.LineGeometry, target int) (core.LineGeometry, error) {
	if g.SRID == target || g.SRID == 0 || target == 0 {
		return g, nil
	}
	if !r.CanProject(g.SRID, target) {
		return core.LineGeometry{}, fmt.Errorf("%w: wkid %d to %d", ErrProjection, g.SRID, target)
	}

	transform := wgs84.EPSG().Transform(g.SRID, target)

	out := core.LineGeometry{SRID: target, Kind: g.Kind, Paths: make([]core.Path, len(g.Paths))}
	for i, path := range g.Paths {
		np := make(core.Path, len(path))
		for j, p := range path {
			x, y, _ := transform(p.X, p.Y, 0)
			if !finite(x) || !finite(y) {
				return core.LineGeometry{}, fmt.Errorf("%w: point (%v, %v) has no image in wkid %d", ErrProjection, p.X, p.Y, target)
			}
			np[j] = core.Point2D{X: x, Y: y}
		}
		out.Paths[i] = np
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
