package planner

import (
	"math"
	"testing"

	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wideOpen = core.ScreenBounds{XMin: -1e6, YMin: -1e6, XMax: 1e6, YMax: 1e6}

func pt(x, y float64) core.Point2D { return core.Point2D{X: x, Y: y} }

func TestAngleOf_PositiveXIs180(t *testing.T) {
	assert.InDelta(t, 180, AngleOf(pt(0, 0), pt(100, 0)), 1e-9)
}

func TestAngleOf_NegativeXIsZero(t *testing.T) {
	assert.InDelta(t, 0, AngleOf(pt(100, 0), pt(0, 0)), 1e-9)
}

func TestAngleOf_DownwardScreenY(t *testing.T) {
	// atan2(1, 0) = 90, minus 180 = -90, normalised to 270
	assert.InDelta(t, 270, AngleOf(pt(0, 0), pt(0, 10)), 1e-9)
}

func TestAngleOf_SwapDiffersBy180(t *testing.T) {
	pairs := [][2]core.Point2D{
		{pt(0, 0), pt(3, 4)},
		{pt(-5, 2), pt(7, -9)},
		{pt(10, 10), pt(10, -10)},
		{pt(1, 1), pt(-1, 1)},
	}
	for _, p := range pairs {
		a := AngleOf(p[0], p[1])
		b := AngleOf(p[1], p[0])
		want := math.Mod(b-180+360, 360)
		diff := math.Abs(a - want)
		assert.True(t, diff < 1e-9 || math.Abs(diff-360) < 1e-9, "angle %v vs %v", a, want)
	}
}

func TestAngleOf_Range(t *testing.T) {
	for deg := 0; deg < 360; deg += 15 {
		r := float64(deg) * math.Pi / 180
		a := AngleOf(pt(0, 0), pt(math.Cos(r), math.Sin(r)))
		assert.GreaterOrEqual(t, a, 0.0)
		assert.Less(t, a, 360.0)
	}
}

func TestPlacementsAlong_ShorterThanGap(t *testing.T) {
	assert.Empty(t, PlacementsAlong(pt(0, 0), pt(39.9, 0), wideOpen, 40))
	assert.Empty(t, PlacementsAlong(pt(0, 0), pt(100, 0), wideOpen, 150))
}

func TestPlacementsAlong_ZeroLengthSegment(t *testing.T) {
	assert.Empty(t, PlacementsAlong(pt(5, 5), pt(5, 5), wideOpen, 40))
}

func TestPlacementsAlong_NonPositiveGap(t *testing.T) {
	assert.Empty(t, PlacementsAlong(pt(0, 0), pt(100, 0), wideOpen, 0))
	assert.Empty(t, PlacementsAlong(pt(0, 0), pt(100, 0), wideOpen, -5))
}

func TestPlacementsAlong_HorizontalSegment(t *testing.T) {
	bounds := core.ScreenBounds{XMin: 0, YMin: 0, XMax: 200, YMax: 200}
	got := PlacementsAlong(pt(0, 0), pt(100, 0), bounds, 40)

	require.Len(t, got, 2)
	assert.InDelta(t, 40, got[0].X, 1e-9)
	assert.InDelta(t, 80, got[1].X, 1e-9)
	assert.Equal(t, 0.0, got[0].Y)
	assert.Equal(t, 0.0, got[1].Y)
}

func TestPlacementsAlong_CountIsFloorOfLengthOverGap(t *testing.T) {
	cases := []struct {
		p1, p2 core.Point2D
		gap    float64
	}{
		{pt(0, 0), pt(100, 0), 40},
		{pt(0, 0), pt(120, 0), 40},
		{pt(0, 0), pt(30, 40), 10},
		{pt(10, -3), pt(-290, 397), 25},
		{pt(0, 0), pt(0.3, 0.4), 0.1},
		{pt(-7.5, 2.25), pt(93.1, 88.8), 13.7},
	}
	for _, c := range cases {
		length := math.Hypot(c.p2.X-c.p1.X, c.p2.Y-c.p1.Y)
		got := PlacementsAlong(c.p1, c.p2, wideOpen, c.gap)
		assert.Len(t, got, int(math.Floor(length/c.gap+1e-12)), "segment %v -> %v gap %v", c.p1, c.p2, c.gap)
	}
}

func TestPlacementsAlong_EvenlySpacedInsideSegment(t *testing.T) {
	p1, p2 := pt(-20, 15), pt(180, -135)
	gap := 35.0
	got := PlacementsAlong(p1, p2, wideOpen, gap)
	require.NotEmpty(t, got)

	assert.InDelta(t, gap, math.Hypot(got[0].X-p1.X, got[0].Y-p1.Y), 1e-9)
	for i := 1; i < len(got); i++ {
		assert.InDelta(t, gap, math.Hypot(got[i].X-got[i-1].X, got[i].Y-got[i-1].Y), 1e-9)
	}
	for _, p := range got {
		assert.True(t, p.X >= math.Min(p1.X, p2.X)-1e-9 && p.X <= math.Max(p1.X, p2.X)+1e-9)
		assert.True(t, p.Y >= math.Min(p1.Y, p2.Y)-1e-9 && p.Y <= math.Max(p1.Y, p2.Y)+1e-9)
	}
}

func TestPlacementsAlong_ViewportFilterDoesNotStopWalk(t *testing.T) {
	// Only the middle window of the segment is visible.
	bounds := core.ScreenBounds{XMin: 50, YMin: -10, XMax: 130, YMax: 10}
	got := PlacementsAlong(pt(0, 0), pt(200, 0), bounds, 20)

	xs := make([]float64, len(got))
	for i, p := range got {
		xs[i] = p.X
	}
	assert.InDeltaSlice(t, []float64{60, 80, 100, 120}, xs, 1e-9)
}

func TestPlacementsAlong_ViewportEdgeIsVisible(t *testing.T) {
	bounds := core.ScreenBounds{XMin: 0, YMin: 0, XMax: 80, YMax: 200}
	got := PlacementsAlong(pt(0, 0), pt(100, 0), bounds, 40)

	require.Len(t, got, 2)
	assert.InDelta(t, 80, got[1].X, 1e-9)
}

func TestPlacementsAlong_JustPastViewportEdgeIsDropped(t *testing.T) {
	bounds := core.ScreenBounds{XMin: 0, YMin: 0, XMax: 79.999, YMax: 200}
	got := PlacementsAlong(pt(0, 0), pt(100, 0), bounds, 40)

	require.Len(t, got, 1)
	assert.InDelta(t, 40, got[0].X, 1e-9)
}

func TestPlacementsAlong_InvertedBoundsAreNormalised(t *testing.T) {
	bounds := core.ScreenBounds{XMin: 200, YMin: 200, XMax: 0, YMax: 0}
	got := PlacementsAlong(pt(0, 0), pt(100, 0), bounds, 40)
	assert.Len(t, got, 2)
}

func TestPlanPath_SkipsShortPaths(t *testing.T) {
	assert.Empty(t, PlanPath(core.Path{pt(1, 1)}, wideOpen, 10))
	assert.Empty(t, PlanPath(nil, wideOpen, 10))
}

func TestPlanPath_SegmentOrder(t *testing.T) {
	path := core.Path{pt(0, 0), pt(100, 0), pt(100, 100)}
	segs := PlanPath(path, wideOpen, 40)

	require.Len(t, segs, 2)
	assert.InDelta(t, 180, segs[0].Angle, 1e-9)
	assert.InDelta(t, 270, segs[1].Angle, 1e-9)
	assert.Len(t, segs[0].Placements, 2)
	assert.Len(t, segs[1].Placements, 2)
	assert.InDelta(t, 40, segs[1].Placements[0].Y, 1e-9)
}
