package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Window configures Run.
type Window struct {
	Title string
	// Width and Height are used when not fullscreen. Zero means 1280x720.
	Width, Height int32
	Fullscreen    bool
	Background    rl.Color
	// Init runs once the window exists, before the first frame.
	Init func()
}

// Run opens the window and drives the frame loop. Each frame it calls update with the frame time
// in seconds, then clears the screen and calls draw. The window closes via its close button;
// ESC does not quit.
func Run(w Window, update func(dt float32), draw func()) {
	if w.Fullscreen {
		rl.SetConfigFlags(rl.FlagFullscreenMode | rl.FlagMsaa4xHint)
		rl.InitWindow(int32(rl.GetMonitorWidth(0)), int32(rl.GetMonitorHeight(0)), w.Title)
	} else {
		if w.Width == 0 || w.Height == 0 {
			w.Width, w.Height = 1280, 720
		}
		rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
		rl.InitWindow(w.Width, w.Height, w.Title)
	}
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(60)
	if w.Init != nil {
		w.Init()
	}

	for !rl.WindowShouldClose() {
		update(rl.GetFrameTime())

		rl.BeginDrawing()
		rl.ClearBackground(w.Background)
		draw()
		rl.EndDrawing()
	}
}

// Camera builds a perspective raylib camera from a world-space eye, target and up.
func Camera(eye, target, up mgl32.Vec3, fovy float32) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec(eye),
		Target:     vec(target),
		Up:         vec(up),
		Fovy:       fovy,
		Projection: rl.CameraPerspective,
	}
}

func vec(v mgl32.Vec3) rl.Vector3 {
	return rl.NewVector3(v[0], v[1], v[2])
}
