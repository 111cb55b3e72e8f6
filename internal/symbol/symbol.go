// Package symbol turns configured symbol specs into concrete, rotated markers.
package symbol

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/OCAP2/dirline/internal/model/core"
)

// ErrInvalidSymbolSpec is returned for specs the resolver cannot interpret.
var ErrInvalidSymbolSpec = errors.New("invalid symbol spec")

// DefaultPreset is used when no direction symbol is configured.
const DefaultPreset = "arrow1"

// Presets are left-pointing outlines on a 100x100 box.
var Presets = map[string]string{
	"arrow1": "m0.5,50.5c0,0 99.5,-41 99.5,-41c0,0 0.5,81.5 0.5,81.5c0,0 -100,-40.5 -100,-40.5z",
	"arrow2": "M1,50l99.5,-50c0,0 -40,49.5 -40,49.5c0,0 39.5,50 39.5,50c0,0 -99,-49.5 -99,-49.5z",
	"arrow3": "m0.5,50.5l90,-50l9,9.5l-79.5,40.5l80,39.5l-10,10.5l-89.5,-50z",
	"arrow4": "m55.4605,51.5754l43.0685,-48.2908l-43.3797,48.2908l43.8197,44.8899l-43.5085,-44.8899zm-6.0505,42.3899l-0.44,-88.1807l-43.37967,45.7908l43.81967,42.3899z",
}

// SizeConfig carries the styling applied to preset and raw path symbols.
type SizeConfig struct {
	Size  float64
	Color color.NRGBA
}

// PathFor resolves a preset name, falling back to the name itself.
func PathFor(name string) string {
	if p, ok := Presets[name]; ok {
		return p
	}
	return name
}

// Resolve builds the marker for one placement rotated by angle degrees. The
// result never aliases state held by spec.
func Resolve(spec core.SymbolSpec, angle float64, cfg SizeConfig) (*core.MarkerDescriptor, error) {
	switch spec.Kind {
	case core.SymbolMarker:
		if spec.Marker == nil {
			return nil, fmt.Errorf("%w: marker spec without descriptor", ErrInvalidSymbolSpec)
		}
		m := spec.Marker.Clone()
		m.Angle = angle
		return m, nil
	case core.SymbolPreset:
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: empty preset name", ErrInvalidSymbolSpec)
		}
		return pathMarker(PathFor(spec.Name), angle, cfg), nil
	case core.SymbolRawPath:
		if spec.Path == "" {
			return nil, fmt.Errorf("%w: empty path", ErrInvalidSymbolSpec)
		}
		return pathMarker(spec.Path, angle, cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidSymbolSpec, spec.Kind)
	}
}

func pathMarker(path string, angle float64, cfg SizeConfig) *core.MarkerDescriptor {
	return &core.MarkerDescriptor{
		Style: core.StylePath,
		Path:  path,
		Size:  cfg.Size,
		Angle: angle,
		Color: cfg.Color,
	}
}
