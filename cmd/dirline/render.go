package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/OCAP2/dirline/internal/config"
	"github.com/OCAP2/dirline/internal/geo"
	"github.com/OCAP2/dirline/internal/line"
	"github.com/OCAP2/dirline/internal/markerset"
	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/OCAP2/dirline/internal/monitor"
	"github.com/OCAP2/dirline/internal/surface"
	"github.com/spf13/pflag"
)

// progressInterval is how often a running animation reports its progress.
const progressInterval = time.Second

func runRender(args []string, stdout io.Writer) (err error) {
	var f renderFlags
	fs := newRenderFlagSet(&f)
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if f.geometry == "" {
		return errors.New("--geometry is required")
	}

	loadConfig(f.configDir)
	if err := bindConfigFlags(fs); err != nil {
		return err
	}
	setupLogging()
	defer func() {
		err = errors.Join(err, shutdown())
	}()

	Logger.Info("Starting render", "version", Version, "geometry", f.geometry)

	if err := setupDispatcher(); err != nil {
		return err
	}
	if err := initStorage(); err != nil {
		return err
	}

	g, err := loadGeometry(f.geometry, f.srid)
	if err != nil {
		return err
	}

	vp, err := viewportFor(f, g)
	if err != nil {
		return err
	}

	opts, err := config.LineOptions()
	if err != nil {
		return fmt.Errorf("reading line options: %w", err)
	}

	builder, err := markerset.NewBuilder(geo.NewReprojector(config.ExtraSRIDs()...), Logger)
	if err != nil {
		return err
	}
	surf := surface.New(vp)

	manager, err := line.NewManager(eventDispatcher, surf, builder,
		line.WithDefaults(opts),
		line.WithLogger(Logger),
		line.WithFadeOut(config.AnimationFadeOut()),
		line.WithRecorder(snapshotRecorder(eventDispatcher)),
	)
	if err != nil {
		return err
	}
	defer manager.Close()

	_, err = eventDispatcher.Dispatch(line.NewDrawnEvent(line.Drawn{
		ID:       f.lineID,
		Geometry: g,
		Style:    surface.LineStyle{Color: f.lineColor, Width: f.lineWidth},
		Hidden:   f.hidden,
	}))
	if err != nil {
		return fmt.Errorf("drawing line: %w", err)
	}

	inst, _ := manager.Line(f.lineID)
	if inst.Err() != nil {
		Logger.Error("Line has no markers", "line", f.lineID, "error", inst.Err())
	} else {
		Logger.Info("Placed markers", "line", f.lineID, "count", len(inst.Markers()))
	}

	if opts.Repeat != 0 {
		waitForAnimation(manager, f.timeout, f.status)
	}

	if err := writeSVG(surf, f.out); err != nil {
		return err
	}
	Logger.Info("Wrote SVG", "path", f.out, "markers", surf.Count())
	fmt.Fprintln(stdout, f.out)
	return nil
}

// loadGeometry reads and validates a geometry file.
func loadGeometry(path string, srid int) (core.LineGeometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.LineGeometry{}, fmt.Errorf("reading geometry: %w", err)
	}
	parsed, err := geo.ParseGeometry(data)
	if err != nil {
		return core.LineGeometry{}, err
	}
	g, err := geo.FromGeometry(parsed, srid)
	if err != nil {
		return core.LineGeometry{}, err
	}
	if err := geo.Validate(g); err != nil {
		return core.LineGeometry{}, err
	}
	return g, nil
}

// viewportFor builds the view from the flags, falling back to the geometry
// bounds when no extent is given.
func viewportFor(f renderFlags, g core.LineGeometry) (core.Viewport, error) {
	width, height, err := parseSize(f.size)
	if err != nil {
		return core.Viewport{}, err
	}

	srid := f.viewSRID
	if srid == 0 {
		srid = f.srid
	}

	var extent core.Extent
	if f.extent != "" {
		extent, err = parseExtent(f.extent, srid)
		if err != nil {
			return core.Viewport{}, err
		}
	} else {
		if srid != g.SRID {
			return core.Viewport{}, errors.New("--extent is required when --view-srid differs from --srid")
		}
		var ok bool
		extent, ok = boundsOf(g, 0.1)
		if !ok {
			return core.Viewport{}, errors.New("geometry has no points")
		}
	}

	return core.Viewport{Extent: extent, WidthPx: width, HeightPx: height}, nil
}

// waitForAnimation blocks until every animation ends while a status monitor
// reports progress. Infinite animations are stopped after timeout.
func waitForAnimation(manager *line.Manager, timeout time.Duration, statusFile string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	mon := monitor.NewService(monitor.Dependencies{
		Lines:      manager,
		Logger:     Logger,
		StatusFile: statusFile,
		Interval:   progressInterval,
	})
	if err := mon.Start(); err != nil {
		Logger.Warn("Status monitor not started", "error", err)
	}
	defer mon.Stop()

	start := time.Now()
	if err := manager.Wait(ctx); err != nil {
		Logger.Info("Stopping animation", "after", time.Since(start), "reason", err)
		manager.StopAnimation()
		return
	}
	Logger.Info("Animation complete", "duration", time.Since(start))
}

func writeSVG(s *surface.SVG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := s.Render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("rendering SVG: %w", err)
	}
	return f.Close()
}
