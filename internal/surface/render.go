package surface

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/OCAP2/dirline/internal/geo"
	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/OCAP2/dirline/internal/symbol"

	svg "github.com/ajstarks/svgo/float"
)

// pathBox is the side of the square preset outlines are authored in.
const pathBox = 100

// Render writes the surface as an SVG document sized to the viewport.
func (s *SVG) Render(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bw := bufio.NewWriter(w)
	canvas := svg.New(bw)
	vp := s.viewport

	canvas.Start(vp.WidthPx, vp.HeightPx)
	for _, id := range s.order {
		canvas.Group(fmt.Sprintf(`id="%s"`, id))

		if shape, ok := s.lines[id]; ok && !shape.hidden {
			renderLine(canvas, shape, vp)
		}
		for _, m := range s.groups[id] {
			if m.Hidden {
				continue
			}
			renderMarker(canvas, m)
		}

		canvas.Gend()
	}
	canvas.End()

	return bw.Flush()
}

func renderLine(canvas *svg.SVG, shape lineShape, vp core.Viewport) {
	screen, err := geo.Project(shape.geometry, vp)
	if err != nil {
		return
	}

	stroke := shape.style.Color
	if stroke == "" {
		stroke = "#000000"
	}
	width := shape.style.Width
	if width <= 0 {
		width = 1
	}
	attrs := []string{fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g", stroke, width)}
	if shape.style.Animated {
		attrs = append(attrs, fmt.Sprintf(`class="%s"`, LineClass))
	}

	for _, path := range screen.Paths {
		if len(path) < 2 {
			continue
		}
		xs := make([]float64, len(path))
		ys := make([]float64, len(path))
		for i, p := range path {
			xs[i], ys[i] = p.X, p.Y
		}
		if screen.Kind == core.KindPolygon {
			canvas.Polygon(xs, ys, attrs...)
		} else {
			canvas.Polyline(xs, ys, attrs...)
		}
	}
}

func renderMarker(canvas *svg.SVG, m *core.MarkerInstance) {
	d := m.Marker
	size := d.Size
	attrs := []string{
		fmt.Sprintf(`class="%s"`, m.Class),
		fmt.Sprintf(`data-ordinal="%d"`, m.Ordinal),
		markerStyle(d, m.Opacity()),
	}

	canvas.Gtransform(fmt.Sprintf("translate(%g,%g) rotate(%g)", m.Screen.X+d.XOffset, m.Screen.Y+d.YOffset, d.Angle))
	switch d.Style {
	case core.StyleCircle:
		canvas.Circle(0, 0, size/2, attrs...)
	case core.StyleSquare:
		canvas.CenterRect(0, 0, size, size, attrs...)
	case core.StylePicture:
		canvas.Image(-d.Width/2, -d.Height/2, int(d.Width), int(d.Height), d.URL, attrs...)
	default:
		path := d.Path
		if path == "" {
			path = shapePath(d.Style)
		}
		scale := size / pathBox
		canvas.Gtransform(fmt.Sprintf("scale(%g) translate(%d,%d)", scale, -pathBox/2, -pathBox/2))
		canvas.Path(path, attrs...)
		canvas.Gend()
	}
	canvas.Gend()
}

func shapePath(style core.MarkerStyle) string {
	switch style {
	case core.StyleDiamond:
		return "M50,0 L100,50 L50,100 L0,50 z"
	case core.StyleCross:
		return "M40,0 L60,0 L60,40 L100,40 L100,60 L60,60 L60,100 L40,100 L40,60 L0,60 L0,40 L40,40 z"
	case core.StyleX:
		return "M15,0 L50,35 L85,0 L100,15 L65,50 L100,85 L85,100 L50,65 L15,100 L0,85 L35,50 L0,15 z"
	default:
		return symbol.PathFor(symbol.DefaultPreset)
	}
}

func markerStyle(d *core.MarkerDescriptor, opacity float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fill:%s;fill-opacity:%g;opacity:%g", hex(d.Color), float64(d.Color.A)/255, opacity)
	if d.Outline != nil && d.Outline.Width > 0 {
		fmt.Fprintf(&b, ";stroke:%s;stroke-width:%g", hex(d.Outline.Color), d.Outline.Width)
	} else {
		b.WriteString(";stroke:none")
	}
	return b.String()
}

// hex drops the alpha suffix; alpha is carried by fill-opacity.
func hex(c color.NRGBA) string {
	return symbol.FormatColor(c)[:7]
}
