package convert

import (
	"image/color"
	"testing"
	"time"

	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *core.BuildSnapshot {
	arrow := &core.MarkerDescriptor{
		Style: core.StylePath,
		Path:  "M0 50 L100 0 L100 100 Z",
		Size:  12,
		Angle: 180,
		Color: color.NRGBA{A: 255},
	}
	faded := core.NewMarkerInstance("l1", core.RoleDirection,
		core.Point2D{X: 80, Y: 200}, core.Point2D{X: 80, Y: 0}, arrow.Clone())
	faded.Ordinal = 1
	faded.SetOpacity(0.25)

	return &core.BuildSnapshot{
		LineID:  "l1",
		BuiltAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Viewport: core.Viewport{
			Extent:  core.Extent{XMin: 0, YMin: 0, XMax: 200, YMax: 200, SRID: 3857},
			WidthPx: 200, HeightPx: 200,
		},
		Markers: []*core.MarkerInstance{
			core.NewMarkerInstance("l1", core.RoleDirection,
				core.Point2D{X: 40, Y: 200}, core.Point2D{X: 40, Y: 0}, arrow),
			nil,
			faded,
		},
	}
}

func TestMarkersToJSON(t *testing.T) {
	snap := testSnapshot()
	out := MarkersToJSON(snap.Markers)

	require.Len(t, out, 2)
	assert.Equal(t, 0, out[0].Ordinal)
	assert.Equal(t, 1.0, out[0].Opacity)
	assert.Equal(t, core.Point2D{X: 40, Y: 200}, out[0].Screen)
	assert.Equal(t, 1, out[1].Ordinal)
	assert.Equal(t, 0.25, out[1].Opacity)
	assert.Equal(t, core.RoleDirection, out[1].Role)

	// stored descriptors do not alias the live markers
	out[0].Marker.Angle = 0
	assert.Equal(t, 180.0, snap.Markers[0].Marker.Angle)
}

func TestExtentToWKT(t *testing.T) {
	wkt := ExtentToWKT(core.Extent{XMin: 0, YMin: 0, XMax: 10, YMax: 20})
	assert.Contains(t, wkt, "POLYGON")
	assert.Contains(t, wkt, "10 20")

	assert.Equal(t, "POLYGON EMPTY", ExtentToWKT(core.Extent{}))
}

func TestSnapshotToRecord(t *testing.T) {
	snap := testSnapshot()
	snap.Error = "invalid symbol"

	rec, err := SnapshotToRecord(snap)
	require.NoError(t, err)

	assert.Equal(t, "l1", rec.LineID)
	assert.Equal(t, snap.BuiltAt, rec.BuiltAt)
	assert.Equal(t, 3857, rec.SRID)
	assert.Equal(t, 2, rec.MarkerCount)
	assert.Equal(t, 200.0, rec.Viewport.Data().WidthPx)
	assert.Equal(t, "invalid symbol", rec.Error)

	markers, err := RecordMarkers(rec)
	require.NoError(t, err)
	require.Len(t, markers, 2)
	assert.Equal(t, "M0 50 L100 0 L100 100 Z", markers[1].Marker.Path)
	assert.Equal(t, 0.25, markers[1].Opacity)
}

func TestSnapshotToRecord_Nil(t *testing.T) {
	_, err := SnapshotToRecord(nil)
	assert.Error(t, err)
}

func TestRecordMarkers_Empty(t *testing.T) {
	rec, err := SnapshotToRecord(&core.BuildSnapshot{LineID: "empty"})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.MarkerCount)

	markers, err := RecordMarkers(rec)
	require.NoError(t, err)
	assert.Empty(t, markers)
}
