package symbol

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/OCAP2/dirline/internal/model/core"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ParseSpec reads the configuration form of a symbol. Strings that start
// with "path:" are raw outlines; anything else is a preset name, which
// Resolve falls back to treating as a path when it is not in the table.
func ParseSpec(s string) core.SymbolSpec {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.SymbolSpec{}
	}
	if raw, ok := strings.CutPrefix(s, "path:"); ok {
		return core.RawPathSymbol(strings.TrimSpace(raw))
	}
	return core.PresetSymbol(s)
}

// ParseColor accepts "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	alpha := uint8(255)
	if len(s) == 9 && strings.HasPrefix(s, "#") {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in color %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// FormatColor renders c as "#rrggbbaa".
func FormatColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
