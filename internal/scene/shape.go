package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Shape is what a node draws: a unit primitive scaled to Size, tinted with Color ("#rrggbb" or "#rrggbbaa").
// Kinds: cube, sphere, cylinder, plane.
type Shape struct {
	Kind  string     `yaml:"kind"`
	Size  [3]float32 `yaml:"size,omitempty"`
	Color string     `yaml:"color,omitempty"`
}

// RGBA is an 8-bit color.
type RGBA struct{ R, G, B, A uint8 }

// DefaultColor is used for shapes without a color.
var DefaultColor = RGBA{128, 128, 128, 255}

// ParseColor reads "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return RGBA{}, fmt.Errorf("scene: bad color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("scene: bad color %q: %w", s, err)
	}
	if len(hex) == 6 {
		return RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
	}
	return RGBA{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// RGBA returns the parsed color, falling back to DefaultColor when unset or malformed.
func (s Shape) RGBA() RGBA {
	if s.Color == "" {
		return DefaultColor
	}
	c, err := ParseColor(s.Color)
	if err != nil {
		return DefaultColor
	}
	return c
}

// Extent returns Size with zero components treated as 1.
func (s Shape) Extent() [3]float32 {
	e := s.Size
	for i := range e {
		if e[i] == 0 {
			e[i] = 1
		}
	}
	return e
}
