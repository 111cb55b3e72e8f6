package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/OCAP2/dirline/internal/animation"
	"github.com/OCAP2/dirline/internal/line"
	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/OCAP2/dirline/internal/symbol"
	"github.com/spf13/viper"
)

// SymbolConfig is one of the direction, start and end sections.
type SymbolConfig struct {
	Symbol string  `json:"symbol" mapstructure:"symbol"`
	Size   float64 `json:"size" mapstructure:"size"`
	Color  string  `json:"color" mapstructure:"color"`
	Show   bool    `json:"show" mapstructure:"show"`
}

// AnimationConfig holds the fade chain settings
type AnimationConfig struct {
	Repeat     string `json:"repeat" mapstructure:"repeat"`
	DurationMs int    `json:"durationMs" mapstructure:"durationMs"`
	FadeOutMs  int    `json:"fadeOutMs" mapstructure:"fadeOutMs"`
}

// LineConfig is the per-line configuration shared by every drawn line.
type LineConfig struct {
	Direction SymbolConfig       `json:"direction" mapstructure:"direction"`
	Start     SymbolConfig       `json:"start" mapstructure:"start"`
	End       SymbolConfig       `json:"end" mapstructure:"end"`
	Spacing   core.SpacingConfig `json:"spacing" mapstructure:"spacing"`
	Animation AnimationConfig    `json:"animation" mapstructure:"animation"`
}

// GetLineConfig decodes the line sections with defaults applied.
func GetLineConfig() (LineConfig, error) {
	var cfg LineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return LineConfig{}, fmt.Errorf("decoding line config: %w", err)
	}
	return cfg, nil
}

// LineOptions builds the default options for drawn lines.
func LineOptions() (line.Options, error) {
	cfg, err := GetLineConfig()
	if err != nil {
		return line.Options{}, err
	}
	return cfg.Options()
}

// AnimationFadeOut returns the fade-out time at the start of every cycle.
func AnimationFadeOut() time.Duration {
	return time.Duration(viper.GetInt("animation.fadeOutMs")) * time.Millisecond
}

// Options converts the decoded sections into line options.
func (c LineConfig) Options() (line.Options, error) {
	opts := line.DefaultOptions()
	m := &opts.Markers

	if spec := symbol.ParseSpec(c.Direction.Symbol); !spec.IsZero() {
		m.Direction = spec
	}
	m.ShowDirection = c.Direction.Show
	if c.Direction.Size > 0 {
		m.Size = c.Direction.Size
	}
	if c.Direction.Color != "" {
		col, err := symbol.ParseColor(c.Direction.Color)
		if err != nil {
			return line.Options{}, fmt.Errorf("direction.color: %w", err)
		}
		m.Color = col
	}

	start, err := startSpec(c.Start)
	if err != nil {
		return line.Options{}, err
	}
	m.Start = start
	m.ShowStart = c.Start.Show

	m.End = symbol.ParseSpec(c.End.Symbol)
	m.ShowEnd = c.End.Show

	if c.Spacing.MinGapPx > 0 {
		m.Spacing = c.Spacing
	}

	opts.Repeat = animation.ParseRepeat(c.Animation.Repeat)
	if c.Animation.DurationMs > 0 {
		opts.Duration = time.Duration(c.Animation.DurationMs) * time.Millisecond
	}
	return opts, nil
}

var markerStyles = map[string]core.MarkerStyle{
	"circle":  core.StyleCircle,
	"square":  core.StyleSquare,
	"diamond": core.StyleDiamond,
	"cross":   core.StyleCross,
	"x":       core.StyleX,
}

// startSpec accepts a marker style name with the section's size and fill,
// a preset or raw path. Empty leaves the default start circle.
func startSpec(c SymbolConfig) (core.SymbolSpec, error) {
	name := strings.ToLower(strings.TrimSpace(c.Symbol))
	style, ok := markerStyles[name]
	if !ok {
		return symbol.ParseSpec(c.Symbol), nil
	}

	def := core.DefaultStartMarker()
	def.Style = style
	if c.Size > 0 {
		def.Size = c.Size
	}
	if c.Color != "" {
		col, err := symbol.ParseColor(c.Color)
		if err != nil {
			return core.SymbolSpec{}, fmt.Errorf("start.color: %w", err)
		}
		def.Color = col
	}
	return core.MarkerSymbol(def), nil
}
