package markerset

import (
	"image/color"

	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/OCAP2/dirline/internal/symbol"
)

// Defaults carried over from the symbol library this package replaces.
const (
	DefaultSize     = 12
	DefaultMinGapPx = 40
)

// Options configures the markers placed on one line.
type Options struct {
	Direction     core.SymbolSpec
	ShowDirection bool
	Start         core.SymbolSpec
	ShowStart     bool
	End           core.SymbolSpec
	ShowEnd       bool
	Size          float64
	Color         color.NRGBA
	Spacing       core.SpacingConfig
}

// DefaultOptions returns direction arrows only, black, 12px, 40px apart.
func DefaultOptions() Options {
	return Options{
		Direction:     core.PresetSymbol(symbol.DefaultPreset),
		ShowDirection: true,
		Size:          DefaultSize,
		Color:         color.NRGBA{A: 255},
		Spacing:       core.SpacingConfig{MinGapPx: DefaultMinGapPx},
	}
}

// Clone returns options that share no descriptors with o.
func (o Options) Clone() Options {
	out := o
	out.Direction = o.Direction.Clone()
	out.Start = o.Start.Clone()
	out.End = o.End.Clone()
	return out
}

func (o Options) directionSpec() core.SymbolSpec {
	if o.Direction.IsZero() {
		return core.PresetSymbol(symbol.DefaultPreset)
	}
	return o.Direction
}

func (o Options) startSpec() core.SymbolSpec {
	if o.Start.IsZero() {
		return core.MarkerSymbol(core.DefaultStartMarker())
	}
	return o.Start
}

func (o Options) endSpec() core.SymbolSpec {
	if o.End.IsZero() {
		return o.directionSpec()
	}
	return o.End
}

func (o Options) gap() float64 {
	if o.Spacing.MinGapPx <= 0 {
		return DefaultMinGapPx
	}
	return o.Spacing.MinGapPx
}

func (o Options) sizeConfig() symbol.SizeConfig {
	size := o.Size
	if size <= 0 {
		size = DefaultSize
	}
	return symbol.SizeConfig{Size: size, Color: o.Color}
}
