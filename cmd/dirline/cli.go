package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// renderFlags are the render options that are not config keys.
type renderFlags struct {
	configDir string
	geometry  string
	srid      int
	viewSRID  int
	extent    string
	size      string
	out       string
	lineID    string
	lineColor string
	lineWidth float64
	hidden    bool
	timeout   time.Duration
	status    string
}

// configFlags maps flags onto the config keys they override. A flag only
// wins over the config file when it is set on the command line.
var configFlags = map[string]string{
	"log-level": "logLevel",
	"logs-dir":  "logsDir",
	"symbol":    "direction.symbol",
	"color":     "direction.color",
	"spacing":   "spacing.minGapPx",
	"start":     "start.show",
	"end":       "end.show",
	"animate":   "animation.repeat",
	"step-ms":   "animation.durationMs",
	"storage":   "storage.type",
}

func newRenderFlagSet(f *renderFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVar(&f.configDir, "config", ".", "directory containing dirline.cfg.json")
	fs.StringVarP(&f.geometry, "geometry", "g", "", "geometry file: WKT, GeoJSON or [[x,y],...] polyline JSON")
	fs.IntVar(&f.srid, "srid", 3857, "spatial reference of the geometry")
	fs.IntVar(&f.viewSRID, "view-srid", 0, "spatial reference of the view (default: --srid)")
	fs.StringVar(&f.extent, "extent", "", "visible map extent xmin,ymin,xmax,ymax (default: geometry bounds plus 10%)")
	fs.StringVar(&f.size, "size", "800x600", "output size in pixels, WxH")
	fs.StringVarP(&f.out, "out", "o", "dirline.svg", "output SVG file")
	fs.StringVar(&f.lineID, "id", "line", "line id")
	fs.StringVar(&f.lineColor, "line-color", "#3388ff", "outline stroke colour")
	fs.Float64Var(&f.lineWidth, "line-width", 2, "outline stroke width")
	fs.BoolVar(&f.hidden, "hidden", false, "draw the line and its markers hidden")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "stop the animation after this long")
	fs.StringVar(&f.status, "status", "", "JSON file rewritten with line status while animating")

	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("logs-dir", "", "directory for session log files")
	fs.String("symbol", "", "direction symbol: preset name or path:<svg path>")
	fs.String("color", "", "direction symbol colour, #rrggbb or #rrggbbaa")
	fs.Float64("spacing", 0, "minimum gap between direction markers in pixels")
	fs.Bool("start", false, "draw a start marker")
	fs.Bool("end", false, "draw an end marker")
	fs.String("animate", "", "animation cycles, or Infinity")
	fs.Int("step-ms", 0, "fade-in time per marker in milliseconds")
	fs.String("storage", "", "snapshot store: memory, sqlite or postgres")

	return fs
}

// bindConfigFlags binds the config flags into viper.
func bindConfigFlags(fs *pflag.FlagSet) error {
	for name, key := range configFlags {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// parseExtent reads "xmin,ymin,xmax,ymax".
func parseExtent(s string, srid int) (core.Extent, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return core.Extent{}, fmt.Errorf("extent %q: want xmin,ymin,xmax,ymax", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return core.Extent{}, fmt.Errorf("extent %q: %w", s, err)
		}
		v[i] = f
	}
	e := core.Extent{XMin: v[0], YMin: v[1], XMax: v[2], YMax: v[3], SRID: srid}
	if e.Width() <= 0 || e.Height() <= 0 {
		return core.Extent{}, fmt.Errorf("extent %q is empty", s)
	}
	return e, nil
}

// parseSize reads "WxH".
func parseSize(s string) (float64, float64, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: want WxH", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("size %q must be positive", s)
	}
	return width, height, nil
}

// boundsOf returns the geometry bounds grown by pad on every side. A
// degenerate span is widened to 1 map unit.
func boundsOf(g core.LineGeometry, pad float64) (core.Extent, bool) {
	e := core.Extent{
		XMin: math.Inf(1), YMin: math.Inf(1),
		XMax: math.Inf(-1), YMax: math.Inf(-1),
		SRID: g.SRID,
	}
	found := false
	for _, path := range g.Paths {
		for _, p := range path {
			e.XMin = math.Min(e.XMin, p.X)
			e.YMin = math.Min(e.YMin, p.Y)
			e.XMax = math.Max(e.XMax, p.X)
			e.YMax = math.Max(e.YMax, p.Y)
			found = true
		}
	}
	if !found {
		return core.Extent{}, false
	}

	dx := math.Max(e.Width(), 1) * pad
	dy := math.Max(e.Height(), 1) * pad
	if e.Width() == 0 {
		dx = math.Max(dx, 0.5)
	}
	if e.Height() == 0 {
		dy = math.Max(dy, 0.5)
	}
	e.XMin -= dx
	e.XMax += dx
	e.YMin -= dy
	e.YMax += dy
	return e, true
}
