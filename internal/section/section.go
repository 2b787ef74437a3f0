package section

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog"

	"scene-director/internal/content"
	"scene-director/internal/input"
	"scene-director/internal/schedule"
	"scene-director/internal/tween"
)

var ErrNoSections = errors.New("section: no sections")

// Listener is told about navigation. SectionChanged runs once per accepted change of the current
// section, before its fade starts. SectionDisplayed runs when a panel has fully faded in.
type Listener interface {
	SectionChanged(from, to int)
	SectionDisplayed(id int)
}

// Options holds timing. Cooldown gates wheel input; Fade is the length of each fade phase.
type Options struct {
	Cooldown time.Duration
	Fade     time.Duration
}

func DefaultOptions() Options {
	return Options{Cooldown: 800 * time.Millisecond, Fade: time.Second}
}

// State is a snapshot of navigation. Queued is 0 when nothing is waiting.
type State struct {
	Current       int
	Displayed     int
	Queued        int
	Transitioning bool
	Gated         bool
}

// Panel is the overlay text of one section. Shown is whether it takes part in layout;
// Opacity is driven by fade tweens.
type Panel struct {
	ID      int
	Title   string
	Body    string
	Shown   bool
	Opacity float32
}

// Controller is the navigation state machine. It owns the current section, a depth-1 queue of
// the newest requested target, and the panel fades. Wheel input passes a cooldown gate first;
// gated events are dropped, not queued.
type Controller struct {
	sections []content.Section
	panels   []Panel
	sched    *schedule.Scheduler
	tweens   *tween.Group
	listener Listener
	opts     Options
	log      zerolog.Logger

	current       int
	displayed     int
	queued        int
	transitioning bool

	gate  *schedule.Timer
	phase *schedule.Timer
}

// New copies sections (ids must run 1..N) and shows section 1.
func New(sections []content.Section, sched *schedule.Scheduler, tweens *tween.Group, l Listener, opts Options, log zerolog.Logger) (*Controller, error) {
	if len(sections) == 0 {
		return nil, ErrNoSections
	}
	var own []content.Section
	if err := copier.CopyWithOption(&own, sections, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("section: copy: %w", err)
	}
	for i, s := range own {
		if s.ID != i+1 {
			return nil, fmt.Errorf("section: id %d at index %d", s.ID, i)
		}
	}
	c := &Controller{
		sections:  own,
		panels:    make([]Panel, len(own)),
		sched:     sched,
		tweens:    tweens,
		listener:  l,
		opts:      opts,
		log:       log.With().Str("component", "section").Logger(),
		current:   1,
		displayed: 1,
	}
	for i, s := range own {
		c.panels[i] = Panel{ID: s.ID, Title: s.Title, Body: s.Body}
	}
	c.panels[0].Shown = true
	c.panels[0].Opacity = 1
	return c, nil
}

// Len is the number of sections.
func (c *Controller) Len() int {
	return len(c.sections)
}

func (c *Controller) Current() int {
	return c.current
}

// Section returns the section with id, clamped into range.
func (c *Controller) Section(id int) content.Section {
	return c.sections[c.clamp(id)-1]
}

func (c *Controller) State() State {
	return State{
		Current:       c.current,
		Displayed:     c.displayed,
		Queued:        c.queued,
		Transitioning: c.transitioning,
		Gated:         c.gate.Active(),
	}
}

// Panels returns a copy of the panel states for drawing.
func (c *Controller) Panels() []Panel {
	out := make([]Panel, len(c.panels))
	copy(out, c.panels)
	return out
}

// HandleEvent feeds wheel events from the input bus.
func (c *Controller) HandleEvent(ev input.Event) {
	if ev.Kind == input.Wheel {
		c.Wheel(ev.Dir)
	}
}

// Wheel moves one section forward (dir > 0) or back (dir < 0). It returns false when the event
// was dropped by the cooldown gate. An accepted event restarts the gate even at either end.
func (c *Controller) Wheel(dir int) bool {
	if dir == 0 {
		return false
	}
	if c.gate.Active() {
		c.log.Trace().Int("dir", dir).Msg("wheel gated")
		return false
	}
	c.gate = c.sched.After(c.opts.Cooldown, nil)

	step := 1
	if dir < 0 {
		step = -1
	}
	c.navigate(c.clamp(c.current + step))
	return true
}

// Goto jumps to id, clamped into range, without touching the wheel gate.
func (c *Controller) Goto(id int) {
	c.navigate(c.clamp(id))
}

// Stop cancels the gate and any fade in flight. The controller stays where it is.
func (c *Controller) Stop() {
	c.sched.Stop(c.gate)
	c.sched.Stop(c.phase)
	c.queued = 0
	c.transitioning = false
}

func (c *Controller) clamp(id int) int {
	return max(1, min(id, len(c.sections)))
}

func (c *Controller) navigate(next int) {
	if next == c.current {
		return
	}
	from := c.current
	c.current = next
	c.log.Debug().Int("from", from).Int("to", next).Msg("section change")
	if c.listener != nil {
		c.listener.SectionChanged(from, next)
	}
	if c.transitioning {
		c.queued = next
		return
	}
	c.fadeTo(next)
}

// fadeTo runs the two fade phases: every visible panel fades out, all are hidden, then the
// target is shown and fades in. A phase with nothing to fade completes at once.
func (c *Controller) fadeTo(target int) {
	c.transitioning = true
	c.displayed = target

	var visible []*Panel
	for i := range c.panels {
		if p := &c.panels[i]; p.Shown && p.Opacity > 0 {
			visible = append(visible, p)
		}
	}
	if len(visible) == 0 {
		c.fadeIn(target)
		return
	}
	for _, p := range visible {
		c.tweens.To(panelKey(p.ID), []tween.Prop{{Ptr: &p.Opacity, To: 0}}, seconds(c.opts.Fade), nil, nil)
	}
	c.phase = c.sched.After(c.opts.Fade, func() { c.fadeIn(target) })
}

func (c *Controller) fadeIn(target int) {
	for i := range c.panels {
		p := &c.panels[i]
		c.tweens.Kill(panelKey(p.ID))
		p.Shown = false
		p.Opacity = 0
	}
	p := &c.panels[target-1]
	p.Shown = true
	c.tweens.To(panelKey(p.ID), []tween.Prop{{Ptr: &p.Opacity, To: 1}}, seconds(c.opts.Fade), nil, nil)
	c.phase = c.sched.After(c.opts.Fade, func() { c.settle(target) })
}

func (c *Controller) settle(target int) {
	c.transitioning = false
	c.phase = nil
	c.panels[target-1].Opacity = 1
	c.log.Debug().Int("section", target).Msg("displayed")
	if c.listener != nil {
		c.listener.SectionDisplayed(target)
	}
	next := c.queued
	c.queued = 0
	if next != 0 && next != c.displayed {
		c.fadeTo(next)
	}
}

func panelKey(id int) string {
	return fmt.Sprintf("panel.%d", id)
}

func seconds(d time.Duration) float32 {
	return float32(d.Seconds())
}
