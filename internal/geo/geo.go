// Package geo converts map-space line geometries into screen space and back.
package geo

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/OCAP2/dirline/internal/model/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrUnsupportedGeometry is returned for geometries that are neither lines nor
// area outlines.
var ErrUnsupportedGeometry = errors.New("unsupported geometry type")

// ErrInvalidCoordinates is returned when input coordinates cannot be decoded
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ParseGeometry decodes WKT, GeoJSON or a bare "[[x,y],...]" polyline.
func ParseGeometry(input []byte) (geom.Geometry, error) {
	trimmed := bytes.TrimSpace(input)
	if len(trimmed) == 0 {
		return geom.Geometry{}, fmt.Errorf("%w: empty input", ErrInvalidCoordinates)
	}

	switch trimmed[0] {
	case '[':
		ls, err := ParsePolyline(string(trimmed))
		if err != nil {
			return geom.Geometry{}, err
		}
		return ls.AsGeometry(), nil
	case '{':
		g, err := geom.UnmarshalGeoJSON(trimmed)
		if err != nil {
			return geom.Geometry{}, fmt.Errorf("failed to parse GeoJSON: %w", err)
		}
		return g, nil
	default:
		g, err := geom.UnmarshalWKT(string(trimmed))
		if err != nil {
			return geom.Geometry{}, fmt.Errorf("failed to parse WKT: %w", err)
		}
		return g, nil
	}
}

// FromGeometry flattens a line or area geometry into paths. Polygons
// contribute every ring, exterior first.
func FromGeometry(g geom.Geometry, srid int) (core.LineGeometry, error) {
	out := core.LineGeometry{SRID: srid}

	switch g.Type() {
	case geom.TypeLineString:
		ls, _ := g.AsLineString()
		out.Kind = core.KindPolyline
		out.Paths = append(out.Paths, pathFromLineString(ls))
	case geom.TypeMultiLineString:
		mls, _ := g.AsMultiLineString()
		out.Kind = core.KindPolyline
		for i := 0; i < mls.NumLineStrings(); i++ {
			out.Paths = append(out.Paths, pathFromLineString(mls.LineStringN(i)))
		}
	case geom.TypePolygon:
		poly, _ := g.AsPolygon()
		out.Kind = core.KindPolygon
		out.Paths = append(out.Paths, ringsOf(poly)...)
	case geom.TypeMultiPolygon:
		mp, _ := g.AsMultiPolygon()
		out.Kind = core.KindPolygon
		for i := 0; i < mp.NumPolygons(); i++ {
			out.Paths = append(out.Paths, ringsOf(mp.PolygonN(i))...)
		}
	default:
		return core.LineGeometry{}, fmt.Errorf("%w: %v", ErrUnsupportedGeometry, g.Type())
	}

	return out, nil
}

func ringsOf(p geom.Polygon) []core.Path {
	rings := []core.Path{pathFromLineString(p.ExteriorRing())}
	for i := 0; i < p.NumInteriorRings(); i++ {
		rings = append(rings, pathFromLineString(p.InteriorRingN(i)))
	}
	return rings
}

func pathFromLineString(ls geom.LineString) core.Path {
	seq := ls.Coordinates()
	path := make(core.Path, seq.Length())
	for i := range path {
		xy := seq.GetXY(i)
		path[i] = core.Point2D{X: xy.X, Y: xy.Y}
	}
	return path
}

// Validate checks the geometry kind before projection.
func Validate(g core.LineGeometry) error {
	switch g.Kind {
	case core.KindPolyline, core.KindPolygon:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedGeometry, g.Kind)
	}
}
