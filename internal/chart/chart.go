// Package chart runs the floating coin chart: every piece bobs on a loop and a coin under the
// cursor flips over along the direction the cursor sits from the screen center.
package chart

import (
	"fmt"
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"scene-director/internal/assets"
	"scene-director/internal/content"
	"scene-director/internal/scene"
	"scene-director/internal/tween"
)

// Spin timing: a fast wind-up of SpinTurns half turns, then a slow settle to SettleTurns.
const (
	SpinTurns   = 3
	SettleTurns = 3.5
	spinUp      = 0.6
	settle      = 1.0
	floatEase   = "power1.inOut"
	spinEase    = "power2.in"
	settleEase  = "power4.out"
)

type Options struct {
	Position  mgl32.Vec3
	Coins     []string
	Float     float32
	Period    float32
	Radius    float32
	Threshold float32
}

// OptionsFrom reads authored chart settings, filling zero values with defaults.
func OptionsFrom(c content.Chart) Options {
	o := Options{
		Position:  c.Position,
		Coins:     c.Coins,
		Float:     c.Float,
		Period:    c.Period,
		Radius:    c.Radius,
		Threshold: c.Threshold,
	}
	if o.Period <= 0 {
		o.Period = 1.5
	}
	if o.Radius <= 0 {
		o.Radius = 0.15
	}
	if o.Threshold <= 0 {
		o.Threshold = 0.1
	}
	return o
}

type piece struct {
	node *scene.Node
	base mgl32.Vec3
	rest mgl32.Quat
	coin bool
	// spin holds the extra rotation about X and Y, in radians.
	spin [2]float32
}

// Chart owns the chart's nodes and their tweens.
type Chart struct {
	Node *scene.Node

	opts   Options
	tweens *tween.Group
	pieces []*piece
	flips  int
	log    zerolog.Logger
}

// New builds the chart from model under root and starts every piece floating.
func New(model *assets.Model, root *scene.Node, tweens *tween.Group, opts Options, log zerolog.Logger) (*Chart, error) {
	node := model.Build()
	node.Position = opts.Position
	c := &Chart{
		Node:   node,
		opts:   opts,
		tweens: tweens,
		log:    log.With().Str("component", "chart").Logger(),
	}
	for _, name := range opts.Coins {
		if node.Find(name) == nil {
			return nil, fmt.Errorf("chart: coin %q not in %s", name, model.Name)
		}
	}
	for _, n := range node.Children() {
		c.pieces = append(c.pieces, &piece{
			node: n,
			base: n.Position,
			rest: n.Rotation,
			coin: slices.Contains(opts.Coins, n.Name),
		})
	}
	root.Add(node)
	for _, p := range c.pieces {
		c.float(p, true)
	}
	return c, nil
}

func floatKey(p *piece) string { return "chart.float." + p.node.Name }

func spinKey(p *piece, axis int) string {
	return fmt.Sprintf("chart.spin.%d.%s", axis, p.node.Name)
}

// float eases p up by Float or back to its base, then turns around. It runs until Dispose.
func (c *Chart) float(p *piece, up bool) {
	if c.opts.Float == 0 {
		return
	}
	to := p.base[1]
	if up {
		to += c.opts.Float
	}
	c.tweens.To(floatKey(p), []tween.Prop{{Ptr: &p.node.Position[1], To: to}}, c.opts.Period,
		tween.Ease(floatEase), func() { c.float(p, !up) })
}

// Hover flips the nearest coin hit by the ray. x and y are the cursor offset from the screen
// center (each in [-0.5, 0.5], y down). A horizontal offset past the threshold flips the coin
// about Y and a vertical one about X. An axis already flipping ignores the hover. Hover
// returns the coin's name, or "" when the ray hits none.
func (c *Chart) Hover(origin, dir mgl32.Vec3, x, y float32) string {
	p := c.pick(origin, dir)
	if p == nil {
		return ""
	}
	// Screen-space offsets: y up, both in [-1, 1].
	offsets := [2]float32{-2 * y, 2 * x}
	for axis, off := range offsets {
		if math32.Abs(off) <= c.opts.Threshold || c.tweens.Running(spinKey(p, axis)) {
			continue
		}
		c.flip(p, axis, math32.Copysign(1, off))
	}
	return p.node.Name
}

func (c *Chart) flip(p *piece, axis int, sign float32) {
	start := p.spin[axis]
	key := spinKey(p, axis)
	ptr := &p.spin[axis]
	c.tweens.To(key, []tween.Prop{{Ptr: ptr, To: start + sign*SpinTurns*math32.Pi}}, spinUp,
		tween.Ease(spinEase), func() {
			c.tweens.To(key, []tween.Prop{{Ptr: ptr, To: start + sign*SettleTurns*math32.Pi}}, settle,
				tween.Ease(settleEase), nil)
		})
	c.flips++
	c.log.Debug().Str("coin", p.node.Name).Int("axis", axis).Float32("sign", sign).Msg("flip")
}

// pick returns the coin whose bounding sphere the ray enters first.
func (c *Chart) pick(origin, dir mgl32.Vec3) *piece {
	var best *piece
	nearest := math32.Inf(1)
	for _, p := range c.pieces {
		if !p.coin {
			continue
		}
		if t, ok := hitSphere(origin, dir, p.node.WorldPosition(), c.opts.Radius); ok && t < nearest {
			best, nearest = p, t
		}
	}
	return best
}

// hitSphere returns the distance along the unit ray dir to the sphere's surface.
func hitSphere(origin, dir, center mgl32.Vec3, r float32) (float32, bool) {
	oc := center.Sub(origin)
	along := oc.Dot(dir)
	d2 := oc.Dot(oc) - along*along
	if d2 > r*r {
		return 0, false
	}
	t := along - math32.Sqrt(r*r-d2)
	if t < 0 {
		t = along + math32.Sqrt(r*r-d2)
	}
	return t, t >= 0
}

// Sync applies each coin's spin on top of its authored rotation.
func (c *Chart) Sync() {
	for _, p := range c.pieces {
		if !p.coin {
			continue
		}
		spin := mgl32.AnglesToQuat(p.spin[0], p.spin[1], 0, mgl32.XYZ)
		p.node.Rotation = spin.Mul(p.rest)
	}
}

// Spin returns a coin's extra rotation about X and Y in radians.
func (c *Chart) Spin(name string) (x, y float32, ok bool) {
	for _, p := range c.pieces {
		if p.coin && p.node.Name == name {
			return p.spin[0], p.spin[1], true
		}
	}
	return 0, 0, false
}

// Flips returns how many flips hovers have started.
func (c *Chart) Flips() int {
	return c.flips
}

// Dispose stops every tween and removes the chart from the scene.
func (c *Chart) Dispose() {
	for _, p := range c.pieces {
		c.tweens.Kill(floatKey(p))
		c.tweens.Kill(spinKey(p, 0))
		c.tweens.Kill(spinKey(p, 1))
	}
	c.Node.Detach()
}
