package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"scene-director/internal/commands"
	"scene-director/internal/content"
	"scene-director/internal/debug"
	"scene-director/internal/director"
	"scene-director/internal/engineconfig"
	"scene-director/internal/fonts"
	"scene-director/internal/graphics"
	"scene-director/internal/logger"
	"scene-director/internal/primitives"
	"scene-director/internal/terminal"
	"scene-director/internal/ui"
)

const defaultFov = 45

var lightDir = mgl32.Vec3{0.4, 1, 0.6}

var CLI struct {
	Config   string `help:"Engine preferences file." default:"config/engine.json" type:"path"`
	Content  string `help:"Content directory. Overrides the preferences file." type:"path"`
	CSS      string `name:"css" help:"Overlay stylesheet. The built-in one is used when empty." type:"path"`
	Font     string `help:"Font name to prefer from the content fonts directory."`
	LogLevel string `help:"Log level (trace, debug, info, warn, error). Overrides the preferences file."`
	Verbose  bool   `help:"Also log to stderr." short:"v"`
	Windowed bool   `help:"Run in a window instead of fullscreen." short:"w"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("director"),
		kong.Description("a scroll-driven 3D scene"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))
	ctx.FatalIfErrorf(run())
}

func run() error {
	prefs, err := engineconfig.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Content != "" {
		prefs.ContentPath = CLI.Content
	}
	if CLI.LogLevel != "" {
		prefs.LogLevel = CLI.LogLevel
	}

	log, err := logger.New(logger.Options{Level: prefs.LogLevel, Console: CLI.Verbose})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Close()

	c, err := content.LoadDir(prefs.ContentPath)
	if err != nil {
		return err
	}
	d, err := director.New(director.Options{
		Prefs:   prefs,
		Content: c,
		Models:  os.DirFS(filepath.Join(prefs.ContentPath, c.Models)),
		Log:     log.Logger,
	})
	if err != nil {
		return err
	}
	defer d.Dispose()

	dbg := debug.New()
	dbg.SetShowFPS(prefs.ShowFPS)
	dbg.SetShowMemAlloc(prefs.ShowMemAlloc)

	console, err := commands.New(commands.Env{Target: d, Overlay: dbg, CameraPath: prefs.CameraStatePath})
	if err != nil {
		return err
	}
	term := terminal.New(log, console)
	overlay := ui.New()
	if CLI.CSS != "" {
		if err := overlay.LoadCSS(CLI.CSS); err != nil {
			return err
		}
	}
	reg := primitives.NewRegistry()
	poller := graphics.NewPoller(d.Bus(), d.Bus().Keys())

	fov := c.Camera.Fov
	if fov == 0 {
		fov = defaultFov
	}

	reg.SetLights(d.Lights())

	update := func(dt float32) {
		if h := rl.GetScreenHeight(); h > 0 {
			d.SetViewport(fov, float32(rl.GetScreenWidth())/float32(h))
		}
		term.Update()
		poller.Poll(term.IsOpen())
		d.Update(dt)
	}
	draw := func() {
		eye, target, up := d.Camera().View()
		rl.BeginMode3D(graphics.Camera(eye, target, up, fov))
		reg.SetView(eye, lightDir)
		reg.DrawScene(d.Root())
		rl.EndMode3D()

		overlay.Draw(d.Sections().Panels(), d.Progress())
		dbg.Draw(debug.Status{
			Nav:     d.Navigation(),
			Bodies:  len(d.World().Bodies()),
			Drawn:   reg.Drawn(),
			Loading: d.Progress().Total - d.Progress().Loaded,
		})
		term.Draw()
	}

	loadFont := func() {
		found, err := fonts.Scan(os.DirFS(prefs.ContentPath), "fonts")
		if err != nil {
			log.Warn().Err(err).Msg("scan fonts")
			return
		}
		name, ok := fonts.Pick(found, CLI.Font)
		if !ok {
			return
		}
		path := filepath.Join(prefs.ContentPath, filepath.FromSlash(name))
		if err := overlay.LoadFont(path); err != nil {
			log.Warn().Err(err).Str("font", path).Msg("load font")
			return
		}
		term.SetFont(overlay.Font())
		dbg.SetFont(overlay.Font())
	}

	log.Info().Bool("windowed", CLI.Windowed).Str("content", prefs.ContentPath).Msg("starting")
	graphics.Run(graphics.Window{
		Title:      "director",
		Fullscreen: !CLI.Windowed,
		Background: rl.NewColor(18, 20, 24, 255),
		Init:       loadFont,
	}, update, draw)
	reg.Unload()

	prefs.ShowFPS, prefs.ShowMemAlloc = dbg.ShowFPS, dbg.ShowMemAlloc
	if err := engineconfig.Save(CLI.Config, prefs); err != nil {
		log.Warn().Err(err).Msg("save preferences")
	}
	return nil
}
