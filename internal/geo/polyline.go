package geo

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/dirline/internal/model/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ParsePolyline parses a JSON array of coordinates into a geom.LineString.
// Input format: "[[x1,y1],[x2,y2],...]"
func ParsePolyline(input string) (geom.LineString, error) {
	path, err := ParsePolylineToPath(input)
	if err != nil {
		return geom.LineString{}, err
	}

	flatCoords := make([]float64, 0, len(path)*2)
	for _, p := range path {
		flatCoords = append(flatCoords, p.X, p.Y)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq)
}

// ParsePolylineToPath parses a JSON array of coordinates into a core.Path.
// Input format: "[[x1,y1],[x2,y2],...]"
func ParsePolylineToPath(input string) (core.Path, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse polyline JSON: %w", err)
	}

	if len(coords) < 2 {
		return nil, fmt.Errorf("polyline must have at least 2 points, got %d", len(coords))
	}

	path := make(core.Path, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values: %w", i, ErrInvalidCoordinates)
		}
		path[i] = core.Point2D{X: coord[0], Y: coord[1]}
	}

	return path, nil
}
