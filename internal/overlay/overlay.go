package overlay

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// frames between counter text refreshes
	updateInterval = 30
)

// Overlay draws 2D text over the canvas: the hint label and a status line at the top-left, and
// the FPS and memory counters at the top-right. Counters are off by default.
type Overlay struct {
	ShowFPS      bool
	ShowMemAlloc bool
	Label        string
	Status       string

	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastMemStats runtime.MemStats
}

// New returns an overlay that draws label and nothing else.
func New(label string) *Overlay {
	return &Overlay{Label: label}
}

// Draw renders the overlay. Call after the 3D scene in the draw loop.
// Counter text is only recomputed every updateInterval frames.
func (o *Overlay) Draw() {
	y := int32(padding)
	if o.Label != "" {
		rl.DrawText(o.Label, padding, y, fontSize, rl.Black)
		y += lineHeight
	}
	if o.Status != "" {
		rl.DrawText(o.Status, padding, y, fontSize/2+4, rl.DarkGray)
	}

	o.frameCount++
	update := (o.frameCount % updateInterval) == 0
	if o.ShowFPS && o.lastFpsText == "" {
		update = true
	}
	if o.ShowMemAlloc && o.lastMemText == "" {
		update = true
	}

	y = padding
	if o.ShowFPS {
		if update {
			o.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		drawRight(o.lastFpsText, y)
		y += lineHeight
	}
	if o.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&o.lastMemStats)
			o.lastMemText = fmt.Sprintf("Mem: %.2f MiB", float64(o.lastMemStats.Alloc)/(1024*1024))
		}
		drawRight(o.lastMemText, y)
	}
}

func drawRight(text string, y int32) {
	if text == "" {
		return
	}
	x := int32(rl.GetScreenWidth()) - rl.MeasureText(text, fontSize) - padding
	rl.DrawText(text, x, y, fontSize, rl.DarkGreen)
}
