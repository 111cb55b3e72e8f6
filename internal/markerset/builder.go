// Package markerset builds the ordered set of markers decorating one line.
package markerset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/dirline/internal/geo"
	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/OCAP2/dirline/internal/planner"
	"github.com/OCAP2/dirline/internal/symbol"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Surface is the rendering surface markers are placed on.
type Surface interface {
	// Add attaches a marker under its line's group.
	Add(m *core.MarkerInstance) error
	// RemoveLine destroys every marker of the line. Unknown lines are a no-op.
	RemoveLine(lineID string)
	// VisibleContains reports whether a map point is in the visible area.
	VisibleContains(p core.Point2D) bool
}

// Line is the input to one build.
type Line struct {
	ID       string
	Geometry core.LineGeometry
	Viewport core.Viewport
	Hidden   bool
	Options  Options
}

// IsConfigurationError reports whether err stems from symbol or geometry
// configuration rather than from the current view.
func IsConfigurationError(err error) bool {
	return errors.Is(err, symbol.ErrInvalidSymbolSpec) || errors.Is(err, geo.ErrUnsupportedGeometry)
}

// Builder places markers for lines. It holds no per-line state.
type Builder struct {
	reprojector *geo.Reprojector
	logger      *slog.Logger

	markers  metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// NewBuilder creates a Builder. Uses the global OTel meter for metrics (no-op
// if not configured).
func NewBuilder(reprojector *geo.Reprojector, logger *slog.Logger) (*Builder, error) {
	if reprojector == nil {
		reprojector = geo.NewReprojector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Builder{reprojector: reprojector, logger: logger}

	m := meter()
	var err error

	b.markers, err = m.Int64Counter(
		"dirline.build.markers",
		metric.WithDescription("Markers placed by marker set builds"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating markers counter: %w", err)
	}

	b.failures, err = m.Int64Counter(
		"dirline.build.errors",
		metric.WithDescription("Marker set builds skipped because of an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating errors counter: %w", err)
	}

	b.duration, err = m.Float64Histogram(
		"dirline.build.duration",
		metric.WithDescription("Marker set build time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return b, nil
}

// Build replaces the line's markers on surface and returns the new set in
// animation order: start marker, direction markers by path then segment,
// end marker. On error the line is left without markers and the error is
// logged once.
func (b *Builder) Build(line Line, surface Surface) ([]*core.MarkerInstance, error) {
	start := time.Now()
	markers, err := b.build(line, surface)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("line", line.ID))
	b.duration.Record(ctx, elapsed, attrs)

	if err != nil {
		surface.RemoveLine(line.ID)
		b.failures.Add(ctx, 1, attrs)
		b.logger.Error("Skipping direction markers for line",
			"line", line.ID,
			"configuration", IsConfigurationError(err),
			"error", err)
		return nil, err
	}

	b.markers.Add(ctx, int64(len(markers)), attrs)
	b.logger.Debug("Built marker set", "line", line.ID, "markers", len(markers), "ms", elapsed)
	return markers, nil
}

func (b *Builder) build(line Line, surface Surface) ([]*core.MarkerInstance, error) {
	vp := line.Viewport
	opts := line.Options

	geometry, err := b.reprojector.Reproject(line.Geometry, vp.Extent.SRID)
	if err != nil {
		return nil, err
	}

	surface.RemoveLine(line.ID)

	screen, err := geo.Project(geometry, vp)
	if err != nil {
		return nil, err
	}
	bounds := geo.ProjectExtent(vp)
	sizeCfg := opts.sizeConfig()

	var set []*core.MarkerInstance
	place := func(role core.MarkerRole, at core.Point2D, m *core.MarkerDescriptor) {
		mapPt := geo.ToMap(at, vp)
		if !surface.VisibleContains(mapPt) {
			return
		}
		mi := core.NewMarkerInstance(line.ID, role, at, mapPt, m)
		mi.Hidden = line.Hidden
		set = append(set, mi)
	}

	if opts.ShowStart {
		if first, ok := firstPoint(screen.Paths); ok {
			m, err := resolveStart(opts.startSpec(), sizeCfg)
			if err != nil {
				return nil, fmt.Errorf("start symbol: %w", err)
			}
			place(core.RoleStart, first, m)
		}
	}

	if opts.ShowDirection {
		spec := opts.directionSpec()
		for _, path := range screen.Paths {
			for _, seg := range planner.PlanPath(path, bounds, opts.gap()) {
				for _, p := range seg.Placements {
					m, err := symbol.Resolve(spec, seg.Angle, sizeCfg)
					if err != nil {
						return nil, fmt.Errorf("direction symbol: %w", err)
					}
					place(core.RoleDirection, p, m)
				}
			}
		}
	}

	if opts.ShowEnd {
		if p1, p2, ok := lastSegment(screen.Paths); ok && p1 != p2 {
			m, err := symbol.Resolve(opts.endSpec(), planner.AngleOf(p1, p2), sizeCfg)
			if err != nil {
				return nil, fmt.Errorf("end symbol: %w", err)
			}
			place(core.RoleEnd, p2, m)
		}
	}

	for i, mi := range set {
		mi.Ordinal = i
		if err := surface.Add(mi); err != nil {
			return nil, fmt.Errorf("adding marker %d: %w", i, err)
		}
	}
	return set, nil
}

// resolveStart keeps a descriptor's own angle; start markers are not
// oriented along the line.
func resolveStart(spec core.SymbolSpec, cfg symbol.SizeConfig) (*core.MarkerDescriptor, error) {
	angle := 0.0
	if spec.Kind == core.SymbolMarker && spec.Marker != nil {
		angle = spec.Marker.Angle
	}
	return symbol.Resolve(spec, angle, cfg)
}

func firstPoint(paths []core.Path) (core.Point2D, bool) {
	if len(paths) == 0 || len(paths[0]) == 0 {
		return core.Point2D{}, false
	}
	return paths[0][0], true
}

func lastSegment(paths []core.Path) (core.Point2D, core.Point2D, bool) {
	if len(paths) == 0 {
		return core.Point2D{}, core.Point2D{}, false
	}
	last := paths[len(paths)-1]
	if len(last) < 2 {
		return core.Point2D{}, core.Point2D{}, false
	}
	return last[len(last)-2], last[len(last)-1], true
}
