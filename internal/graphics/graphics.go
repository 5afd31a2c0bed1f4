package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Window configures the native window.
type Window struct {
	Width      int32
	Height     int32
	Title      string
	Fullscreen bool
	TargetFPS  int32
}

// App is driven by Run. Update gets the frame time in seconds; Draw runs between BeginDrawing and
// EndDrawing and is responsible for clearing; Unload runs once before the window closes.
type App interface {
	Update(dt float32)
	Draw()
	Unload()
}

// Run opens the window and drives app until the window is closed.
func Run(win Window, app App) {
	width, height := win.Width, win.Height
	if win.Fullscreen {
		rl.SetConfigFlags(rl.FlagFullscreenMode | rl.FlagMsaa4xHint)
		rl.InitWindow(width, height, win.Title)
		width, height = int32(rl.GetMonitorWidth(0)), int32(rl.GetMonitorHeight(0))
		rl.SetWindowSize(int(width), int(height))
	} else {
		rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
		rl.InitWindow(width, height, win.Title)
	}
	defer rl.CloseWindow()
	defer app.Unload()

	if win.TargetFPS > 0 {
		rl.SetTargetFPS(win.TargetFPS)
	}

	for !rl.WindowShouldClose() {
		app.Update(rl.GetFrameTime())

		rl.BeginDrawing()
		app.Draw()
		rl.EndDrawing()
	}
}
