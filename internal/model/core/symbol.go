// internal/model/core/symbol.go
package core

import "image/color"

// SymbolKind tags the variant held by a SymbolSpec.
type SymbolKind string

const (
	SymbolPreset  SymbolKind = "preset"
	SymbolRawPath SymbolKind = "rawPath"
	SymbolMarker  SymbolKind = "marker"
)

// SymbolSpec selects the symbol drawn at a placement. Exactly one of Name,
// Path or Marker is meaningful, depending on Kind.
type SymbolSpec struct {
	Kind   SymbolKind        `json:"kind"`
	Name   string            `json:"name,omitempty"`
	Path   string            `json:"path,omitempty"`
	Marker *MarkerDescriptor `json:"marker,omitempty"`
}

// PresetSymbol returns a spec looked up in the named path table.
func PresetSymbol(name string) SymbolSpec {
	return SymbolSpec{Kind: SymbolPreset, Name: name}
}

// RawPathSymbol returns a spec drawing the given outline path.
func RawPathSymbol(path string) SymbolSpec {
	return SymbolSpec{Kind: SymbolRawPath, Path: path}
}

// MarkerSymbol returns a spec that clones d for every placement.
func MarkerSymbol(d *MarkerDescriptor) SymbolSpec {
	return SymbolSpec{Kind: SymbolMarker, Marker: d}
}

// IsZero reports whether no symbol was configured.
func (s SymbolSpec) IsZero() bool {
	return s.Kind == "" && s.Name == "" && s.Path == "" && s.Marker == nil
}

// Clone returns a copy that shares no mutable state with s.
func (s SymbolSpec) Clone() SymbolSpec {
	out := s
	out.Marker = s.Marker.Clone()
	return out
}

// MarkerStyle is the shape family of a marker.
type MarkerStyle string

const (
	StyleCircle  MarkerStyle = "circle"
	StyleSquare  MarkerStyle = "square"
	StyleDiamond MarkerStyle = "diamond"
	StyleCross   MarkerStyle = "cross"
	StyleX       MarkerStyle = "x"
	StylePath    MarkerStyle = "path"
	StylePicture MarkerStyle = "picture"
)

// Outline is the stroke around a marker.
type Outline struct {
	Color color.NRGBA `json:"color"`
	Width float64     `json:"width"`
}

// MarkerDescriptor fully describes a renderable marker. Path outlines are
// authored pointing left (towards -x); Angle rotates them into place.
type MarkerDescriptor struct {
	Style   MarkerStyle `json:"style"`
	Path    string      `json:"path,omitempty"`
	URL     string      `json:"url,omitempty"`
	Size    float64     `json:"size"`
	Angle   float64     `json:"angle"`
	Color   color.NRGBA `json:"color"`
	Outline *Outline    `json:"outline,omitempty"`
	Width   float64     `json:"width,omitempty"`
	Height  float64     `json:"height,omitempty"`
	XOffset float64     `json:"xoffset,omitempty"`
	YOffset float64     `json:"yoffset,omitempty"`
}

// Clone deep-copies the descriptor. A nil receiver yields nil.
func (m *MarkerDescriptor) Clone() *MarkerDescriptor {
	if m == nil {
		return nil
	}
	out := *m
	if m.Outline != nil {
		o := *m.Outline
		out.Outline = &o
	}
	return &out
}

// DefaultStartMarker is the circle drawn at the first vertex when no start
// symbol is configured. Every call returns a fresh value.
func DefaultStartMarker() *MarkerDescriptor {
	return &MarkerDescriptor{
		Style: StyleCircle,
		Size:  8,
		Color: color.NRGBA{R: 128, G: 128, B: 128, A: 64},
		Outline: &Outline{
			Color: color.NRGBA{A: 255},
			Width: 2,
		},
	}
}
