package ui

import (
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-director/internal/scene"
)

// Rule is one class selector (without the dot) and its declarations.
type Rule struct {
	Selector string
	Props    map[string]string
}

// Stylesheet is a list of rules. Later rules override earlier ones.
type Stylesheet struct {
	Rules []Rule
}

// Style holds resolved values for one class.
// LeftPct/TopPct position the box within the free screen space (0-100); -1 means use Left/Top.
type Style struct {
	Background rl.Color
	Color      rl.Color
	Border     rl.Color
	HasBorder  bool
	Width      int32
	Height     int32
	Left       int32
	Top        int32
	LeftPct    int32
	TopPct     int32
	Padding    int32
	FontSize   int32
	Gap        int32
}

func defaultStyle() Style {
	return Style{
		Background: rl.NewColor(0, 0, 0, 0),
		Color:      rl.White,
		Border:     rl.Black,
		LeftPct:    -1,
		TopPct:     -1,
		Padding:    4,
		FontSize:   20,
		Gap:        4,
	}
}

// Resolve merges every rule for class, in order.
func (s *Stylesheet) Resolve(class string) Style {
	out := defaultStyle()
	if s == nil {
		return out
	}
	for _, r := range s.Rules {
		if r.Selector == class {
			out.apply(r.Props)
		}
	}
	return out
}

func (st *Style) apply(props map[string]string) {
	for k, v := range props {
		switch k {
		case "background":
			if c, ok := ParseHexColor(v); ok {
				st.Background = c
			}
		case "color":
			if c, ok := ParseHexColor(v); ok {
				st.Color = c
			}
		case "border":
			if c, ok := ParseHexColor(v); ok {
				st.Border = c
				st.HasBorder = true
			}
		case "width":
			setPx(&st.Width, v)
		case "height":
			setPx(&st.Height, v)
		case "padding":
			setPx(&st.Padding, v)
		case "font-size":
			setPx(&st.FontSize, v)
		case "gap":
			setPx(&st.Gap, v)
		case "left":
			if pct, ok := ParsePct(v); ok {
				st.LeftPct = pct
			} else {
				setPx(&st.Left, v)
			}
		case "top":
			if pct, ok := ParsePct(v); ok {
				st.TopPct = pct
			} else {
				setPx(&st.Top, v)
			}
		}
	}
}

func setPx(dst *int32, v string) {
	if n, ok := ParsePx(v); ok && n >= 0 {
		*dst = n
	}
}

// Place returns the top-left corner of a w x h box on a screen of the given size.
func (st Style) Place(screenW, screenH, w, h int32) (x, y int32) {
	x, y = st.Left, st.Top
	if st.LeftPct >= 0 {
		x = (screenW - w) * st.LeftPct / 100
	}
	if st.TopPct >= 0 {
		y = (screenH - h) * st.TopPct / 100
	}
	return x, y
}

// ParseHexColor parses #rgb, #rrggbb or #rrggbbaa.
func ParseHexColor(s string) (rl.Color, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := scene.ParseColor(s)
	if err != nil {
		return rl.Black, false
	}
	return rl.NewColor(c.R, c.G, c.B, c.A), true
}

// ParsePx parses a number with an optional "px" suffix.
func ParsePx(s string) (int32, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// ParsePct parses "N%" with N in 0-100.
func ParsePct(s string) (int32, bool) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(strings.TrimSuffix(s, "%"))
	if !strings.HasSuffix(s, "%") || err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return int32(n), true
}

// Faded scales c's alpha by opacity (clamped to [0, 1]).
func Faded(c rl.Color, opacity float32) rl.Color {
	opacity = max(0, min(1, opacity))
	c.A = uint8(float32(c.A) * opacity)
	return c
}
