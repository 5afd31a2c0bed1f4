package main

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"instanced-shapes/internal/config"
	"instanced-shapes/internal/graphics"
	"instanced-shapes/internal/overlay"
	"instanced-shapes/internal/picking"
	"instanced-shapes/internal/scene"
	"instanced-shapes/internal/scenegraph"
	"instanced-shapes/internal/sim"
)

// app connects the simulation to the window: clicks on empty space toggle the shape, every frame
// advances the simulation and redraws its scene.
type app struct {
	log     *zap.Logger
	sim     *sim.Simulation
	scene   *scene.Scene
	overlay *overlay.Overlay
}

func (a *app) Update(dt float32) {
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		ray := a.scene.PointerRay()
		if picking.Miss(ray, a.sim.Scene()) {
			mode := a.sim.PointerMissed()
			a.log.Info("shape toggled", zap.Stringer("mode", mode))
		}
	}
	a.sim.Update(dt)
	if a.overlay.ShowFPS {
		a.overlay.Status = a.sim.Stats().String()
	}
}

func (a *app) Draw() {
	d := a.sim.Scene()
	a.scene.Draw(d)
	a.overlay.Draw()
}

func (a *app) Unload() {
	a.scene.Unload()
}

func runWindow(cfg config.Config, log *zap.Logger) error {
	s, err := newSimulation(cfg, newRand(0), log)
	if err != nil {
		return err
	}
	defer s.Close()

	ov := overlay.New(scenegraph.Label)
	ov.ShowFPS = cfg.Debug.ShowFPS
	ov.ShowMemAlloc = cfg.Debug.ShowMemAlloc

	a := &app{log: log, sim: s, scene: scene.New(s.Scene()), overlay: ov}
	graphics.Run(graphics.Window{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Title:      cfg.Window.Title,
		Fullscreen: cfg.Window.Fullscreen,
		TargetFPS:  cfg.Window.TargetFPS,
	}, a)
	log.Info("window closed", zap.Uint64("frames", s.Stats().Frame))
	return nil
}
