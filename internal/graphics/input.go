package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-director/internal/input"
)

// Poller turns raylib's per-frame input state into input bus calls.
type Poller struct {
	bus   *input.Bus
	codes []int32
	last  rl.Vector2
}

func NewPoller(bus *input.Bus, keys input.KeyMap) *Poller {
	return &Poller{bus: bus, codes: keys.RawCodes()}
}

// Poll publishes this frame's wheel, click, key and cursor changes. While captured (the terminal
// is open) the scene sees nothing and held keys are released.
func (p *Poller) Poll(captured bool) {
	if captured || !rl.IsWindowFocused() {
		p.bus.Release()
		return
	}
	// Raylib reports wheel-up as positive; the bus expects scroll deltas with down positive.
	if move := rl.GetMouseWheelMove(); move != 0 {
		p.bus.Wheel(-move)
	}
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		p.bus.Click()
	}
	for _, raw := range p.codes {
		if rl.IsKeyPressed(raw) {
			p.bus.KeyDown(raw)
		}
		if rl.IsKeyReleased(raw) {
			p.bus.KeyUp(raw)
		}
	}
	if pos := rl.GetMousePosition(); pos != p.last {
		p.last = pos
		p.bus.Cursor(pos.X, pos.Y, float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	}
}
