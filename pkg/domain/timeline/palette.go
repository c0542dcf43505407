package timeline

import (
	"maps"

	"github.com/frops/planner/pkg/domain/planning"
)

// Color is a named display color for a team.
type Color struct {
	Name string `json:"name" yaml:"name"`
	Hex  string `json:"hex" yaml:"hex"`
}

var (
	Blue   = Color{Name: "blue", Hex: "#3b82f6"}
	Green  = Color{Name: "green", Hex: "#22c55e"}
	Purple = Color{Name: "purple", Hex: "#a855f7"}
	Gray   = Color{Name: "gray", Hex: "#6b7280"}
)

// Palette maps team prefixes to colors. The zero Palette behaves like
// DefaultPalette.
type Palette struct {
	teams    map[string]Color
	fallback Color
}

// DefaultPalette returns the built-in team colors.
func DefaultPalette() Palette {
	return NewPalette(map[string]Color{
		"FOO": Blue,
		"ABC": Green,
		"BAR": Purple,
	}, Gray)
}

// NewPalette builds a palette. An empty fallback becomes Gray.
func NewPalette(teams map[string]Color, fallback Color) Palette {
	if fallback.Hex == "" {
		fallback = Gray
	}
	return Palette{teams: maps.Clone(teams), fallback: fallback}
}

// IsZero reports whether the palette was never initialised.
func (p Palette) IsZero() bool {
	return p.teams == nil && p.fallback.Hex == ""
}

// With returns a copy of the palette with team mapped to c.
func (p Palette) With(team string, c Color) Palette {
	if p.IsZero() {
		p = DefaultPalette()
	}
	teams := maps.Clone(p.teams)
	if teams == nil {
		teams = make(map[string]Color, 1)
	}
	teams[team] = c
	return Palette{teams: teams, fallback: p.fallback}
}

// Fallback returns the color used for unknown teams.
func (p Palette) Fallback() Color {
	if p.IsZero() {
		return Gray
	}
	return p.fallback
}

// Teams returns a copy of the team mapping.
func (p Palette) Teams() map[string]Color {
	if p.IsZero() {
		return DefaultPalette().Teams()
	}
	return maps.Clone(p.teams)
}

// ColorFor returns the color of the team encoded in code.
func (p Palette) ColorFor(code string) Color {
	if p.IsZero() {
		p = DefaultPalette()
	}
	if c, ok := p.teams[planning.TeamOf(code)]; ok {
		return c
	}
	return p.fallback
}
