package debug

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-director/internal/section"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// Text is rebuilt every refreshEvery frames.
	refreshEvery = 30
)

// Status is the scene state shown by the nav readout.
type Status struct {
	Nav     section.State
	Bodies  int
	Drawn   int
	Loading int
}

// Debug draws the optional top-right readouts. All are off by default.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowNav      bool

	font     rl.Font
	frame    uint32
	fpsText  string
	memText  string
	memStats runtime.MemStats
}

func New() *Debug {
	return &Debug{}
}

func (d *Debug) SetShowFPS(show bool)      { d.ShowFPS = show }
func (d *Debug) SetShowMemAlloc(show bool) { d.ShowMemAlloc = show }
func (d *Debug) SetShowNav(show bool)      { d.ShowNav = show }

// SetFont sets the readout font. A zero texture ID means raylib's default.
func (d *Debug) SetFont(font rl.Font) {
	d.font = font
}

// Draw renders the enabled readouts, right-aligned, in FPS, memory, nav order.
func (d *Debug) Draw(st Status) {
	d.frame++
	refresh := d.frame%refreshEvery == 0 ||
		(d.ShowFPS && d.fpsText == "") ||
		(d.ShowMemAlloc && d.memText == "")

	y := int32(padding)
	if d.ShowFPS {
		if refresh {
			d.fpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		d.line(d.fpsText, y, rl.Green)
		y += lineHeight
	}
	if d.ShowMemAlloc {
		if refresh {
			runtime.ReadMemStats(&d.memStats)
			d.memText = fmt.Sprintf("Mem: %.2f MiB", float64(d.memStats.Alloc)/(1024*1024))
		}
		d.line(d.memText, y, rl.Green)
		y += lineHeight
	}
	if d.ShowNav {
		for _, l := range navLines(st) {
			d.line(l, y, rl.Yellow)
			y += lineHeight
		}
	}
}

func navLines(st Status) []string {
	n := st.Nav
	out := []string{
		fmt.Sprintf("Section: %d shown %d", n.Current, n.Displayed),
		fmt.Sprintf("Bodies: %d drawn %d", st.Bodies, st.Drawn),
	}
	if n.Transitioning {
		out = append(out, fmt.Sprintf("Transition, queued %d", n.Queued))
	}
	if n.Gated {
		out = append(out, "Scroll gated")
	}
	if st.Loading > 0 {
		out = append(out, fmt.Sprintf("Loading: %d", st.Loading))
	}
	return out
}

func (d *Debug) line(text string, y int32, c rl.Color) {
	screenW := int32(rl.GetScreenWidth())
	if d.font.Texture.ID != 0 {
		sz := float32(fontSize)
		x := float32(screenW) - rl.MeasureTextEx(d.font, text, sz, 1).X - padding
		rl.DrawTextEx(d.font, text, rl.NewVector2(x, float32(y)), sz, 1, c)
		return
	}
	rl.DrawText(text, screenW-rl.MeasureText(text, fontSize)-padding, y, fontSize, c)
}
