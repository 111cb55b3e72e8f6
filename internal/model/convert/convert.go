// Package convert provides functions to convert build snapshots into their
// stored forms
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/dirline/internal/model"
	"github.com/OCAP2/dirline/internal/model/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// MarkerToJSON captures a marker, with its current opacity, in stored form.
func MarkerToJSON(m *core.MarkerInstance) model.MarkerJSON {
	return model.MarkerJSON{
		Ordinal: m.Ordinal,
		Role:    m.Role,
		Screen:  m.Screen,
		Map:     m.Map,
		Marker:  m.Marker.Clone(),
		Opacity: m.Opacity(),
		Hidden:  m.Hidden,
	}
}

// MarkersToJSON converts every marker, skipping nil entries.
func MarkersToJSON(markers []*core.MarkerInstance) []model.MarkerJSON {
	out := make([]model.MarkerJSON, 0, len(markers))
	for _, m := range markers {
		if m == nil {
			continue
		}
		out = append(out, MarkerToJSON(m))
	}
	return out
}

// ExtentToWKT renders the extent as a polygon. An empty extent yields
// "POLYGON EMPTY".
func ExtentToWKT(e core.Extent) string {
	if e.Width() <= 0 || e.Height() <= 0 {
		return geom.Polygon{}.AsText()
	}
	env := geom.NewEnvelope(
		geom.XY{X: e.XMin, Y: e.YMin},
		geom.XY{X: e.XMax, Y: e.YMax},
	)
	return env.AsGeometry().AsText()
}

// SnapshotToRecord converts a build snapshot into a database row.
func SnapshotToRecord(s *core.BuildSnapshot) (model.BuildRecord, error) {
	if s == nil {
		return model.BuildRecord{}, fmt.Errorf("nil snapshot")
	}
	markers := MarkersToJSON(s.Markers)
	data, err := json.Marshal(markers)
	if err != nil {
		return model.BuildRecord{}, fmt.Errorf("encoding markers of line %s: %w", s.LineID, err)
	}
	return model.BuildRecord{
		LineID:      s.LineID,
		BuiltAt:     s.BuiltAt,
		SRID:        s.Viewport.Extent.SRID,
		ExtentWKT:   ExtentToWKT(s.Viewport.Extent),
		Viewport:    datatypes.NewJSONType(s.Viewport),
		MarkerCount: len(markers),
		Markers:     datatypes.JSON(data),
		Error:       s.Error,
	}, nil
}

// RecordMarkers decodes the markers column of a stored row.
func RecordMarkers(r model.BuildRecord) ([]model.MarkerJSON, error) {
	if len(r.Markers) == 0 {
		return nil, nil
	}
	var out []model.MarkerJSON
	if err := json.Unmarshal(r.Markers, &out); err != nil {
		return nil, fmt.Errorf("decoding markers of line %s: %w", r.LineID, err)
	}
	return out, nil
}
