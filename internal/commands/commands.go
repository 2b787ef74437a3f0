package commands

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-shellwords"
)

const prefix = "cmd "

// Target is what console commands drive.
type Target interface {
	Goto(id int)
	Throw()
	Jump() bool
	ResetVehicle() error
	ResetToys()
	SaveCamera(path string) error
	LoadCamera(path string) error
	ShowLights(show bool)
}

// Overlay toggles the debug readouts.
type Overlay interface {
	SetShowFPS(show bool)
	SetShowMemAlloc(show bool)
	SetShowNav(show bool)
}

// Env is bound into every command's Run.
type Env struct {
	Target     Target
	Overlay    Overlay
	CameraPath string
	out        *bytes.Buffer
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}

type gotoCmd struct {
	Section int `arg:"" help:"Section id; out of range ids are clamped."`
}

func (c *gotoCmd) Run(e *Env) error {
	e.Target.Goto(c.Section)
	e.printf("goto %d", c.Section)
	return nil
}

type throwCmd struct{}

func (c *throwCmd) Run(e *Env) error {
	e.Target.Throw()
	e.printf("thrown")
	return nil
}

type jumpCmd struct{}

func (c *jumpCmd) Run(e *Env) error {
	if !e.Target.Jump() {
		e.printf("already jumping")
		return nil
	}
	e.printf("jump")
	return nil
}

type resetCmd struct {
	What string `arg:"" enum:"vehicle,toys" help:"vehicle or toys."`
}

func (c *resetCmd) Run(e *Env) error {
	switch c.What {
	case "vehicle":
		if err := e.Target.ResetVehicle(); err != nil {
			return err
		}
	case "toys":
		e.Target.ResetToys()
	}
	e.printf("reset %s", c.What)
	return nil
}

type cameraCmd struct {
	Action string `arg:"" enum:"save,load" help:"save or load."`
	Path   string `arg:"" optional:"" help:"State file; defaults to the configured path."`
}

func (c *cameraCmd) Run(e *Env) error {
	path := c.Path
	if path == "" {
		path = e.CameraPath
	}
	var err error
	if c.Action == "save" {
		err = e.Target.SaveCamera(path)
	} else {
		err = e.Target.LoadCamera(path)
	}
	if err != nil {
		return err
	}
	e.printf("camera %s %s", c.Action, path)
	return nil
}

func toggleValue(show, hide bool) (bool, error) {
	if !show && !hide {
		return false, errors.New("pass --show or --hide")
	}
	return show, nil
}

type fpsCmd struct {
	Show bool `xor:"fps" help:"Show the counter."`
	Hide bool `xor:"fps" help:"Hide the counter."`
}

func (c *fpsCmd) Run(e *Env) error {
	show, err := toggleValue(c.Show, c.Hide)
	if err != nil {
		return err
	}
	e.Overlay.SetShowFPS(show)
	return nil
}

type memallocCmd struct {
	Show bool `xor:"memalloc" help:"Show the readout."`
	Hide bool `xor:"memalloc" help:"Hide the readout."`
}

func (c *memallocCmd) Run(e *Env) error {
	show, err := toggleValue(c.Show, c.Hide)
	if err != nil {
		return err
	}
	e.Overlay.SetShowMemAlloc(show)
	return nil
}

type navCmd struct {
	Show bool `xor:"nav" help:"Show the navigation state."`
	Hide bool `xor:"nav" help:"Hide the navigation state."`
}

func (c *navCmd) Run(e *Env) error {
	show, err := toggleValue(c.Show, c.Hide)
	if err != nil {
		return err
	}
	e.Overlay.SetShowNav(show)
	return nil
}

type lightsCmd struct {
	Show bool `xor:"lights" help:"Turn the spot lights on."`
	Hide bool `xor:"lights" help:"Turn the spot lights off."`
}

func (c *lightsCmd) Run(e *Env) error {
	show, err := toggleValue(c.Show, c.Hide)
	if err != nil {
		return err
	}
	e.Target.ShowLights(show)
	if show {
		e.printf("lights on")
	} else {
		e.printf("lights off")
	}
	return nil
}

type grammar struct {
	Goto     gotoCmd     `cmd:"" help:"Go to a section, ignoring the scroll gate."`
	Throw    throwCmd    `cmd:"" help:"Throw the dice and the sticks."`
	Jump     jumpCmd     `cmd:"" help:"Make the racer jump."`
	Reset    resetCmd    `cmd:"" help:"Put the vehicle or the toys back."`
	Camera   cameraCmd   `cmd:"" help:"Save or load the camera rig pose."`
	Fps      fpsCmd      `cmd:"" help:"Show or hide the FPS counter."`
	Memalloc memallocCmd `cmd:"" help:"Show or hide the heap readout."`
	Nav      navCmd      `cmd:"" help:"Show or hide section and physics state."`
	Lights   lightsCmd   `cmd:"" help:"Turn the spot lights on or off."`
}

// Console parses console lines with kong and runs them against its Env. Each line is parsed
// into a fresh grammar so flags never carry over from the previous line.
type Console struct {
	env    Env
	out    bytes.Buffer
	exited bool
}

// New returns a console bound to env.
func New(env Env) (*Console, error) {
	c := &Console{env: env}
	c.env.out = &c.out
	if _, err := c.parser(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Console) parser() (*kong.Kong, error) {
	var g grammar
	p, err := kong.New(&g,
		kong.Name("cmd"),
		kong.Description("Scene console."),
		kong.Writers(&c.out, &c.out),
		kong.Exit(func(int) { c.exited = true }),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
	)
	if err != nil {
		return nil, fmt.Errorf("commands: %w", err)
	}
	return p, nil
}

// Parse interprets line as a terminal line. If line starts with "cmd " (case-sensitive), the
// rest is split shell-style (quotes group words) and returned with ok true. Otherwise nil, false.
// Unbalanced quotes fall back to splitting on spaces.
func Parse(line string) (args []string, ok bool) {
	rest, ok := strings.CutPrefix(line, prefix)
	if !ok {
		return nil, false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil, true
	}
	args, err := shellwords.Parse(rest)
	if err != nil {
		return strings.Fields(rest), true
	}
	return args, true
}

// Execute runs one command and returns what it printed. Help requests return the usage text.
func (c *Console) Execute(args []string) (string, error) {
	c.out.Reset()
	c.exited = false
	if len(args) == 0 {
		return "", errors.New("missing subcommand")
	}
	p, err := c.parser()
	if err != nil {
		return "", err
	}
	ctx, err := p.Parse(args)
	if c.exited {
		return c.out.String(), nil
	}
	if err != nil {
		return "", err
	}
	if err := ctx.Run(&c.env); err != nil {
		return c.out.String(), err
	}
	return c.out.String(), nil
}
