package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"instanced-shapes/internal/commands"
	"instanced-shapes/internal/config"
	"instanced-shapes/internal/instancing"
	"instanced-shapes/internal/logger"
	"instanced-shapes/internal/palette"
	"instanced-shapes/internal/shape"
	"instanced-shapes/internal/sim"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	reg := commands.NewRegistry("run")
	reg.Register("run", "open the window (default)", nil, func() error {
		return runWindow(cfg, log)
	})

	headless := flag.NewFlagSet("headless", flag.ContinueOnError)
	frames := headless.Int("frames", 600, "number of frames to simulate")
	toggleEvery := headless.Int("toggle-every", 0, "toggle the shape every K frames (0 = never)")
	seed := headless.Uint64("seed", 0, "random seed (0 = random)")
	reg.Register("headless", "simulate without a window and log stats", headless, func() error {
		return runHeadless(cfg, log, *frames, *toggleEvery, *seed)
	})

	initCfg := flag.NewFlagSet("init-config", flag.ContinueOnError)
	out := initCfg.String("out", config.ConfigPath, "file to write")
	force := initCfg.Bool("force", false, "overwrite an existing file")
	reg.Register("init-config", "write the default config file", initCfg, func() error {
		if err := config.Init(*out, *force); err != nil {
			return err
		}
		log.Info("config written", zap.String("path", *out))
		return nil
	})

	if err := reg.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, commands.ErrUnknownCommand) {
			fmt.Fprintf(os.Stderr, "usage: shapes [command] [flags]\n%s", reg.Usage())
		}
		log.Error("shapes failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if cfg, err = config.ApplyEnv(cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// newSimulation builds the shape state and simulation from a validated config.
func newSimulation(cfg config.Config, rng *rand.Rand, log *zap.Logger) (*sim.Simulation, error) {
	mode, err := shape.ParseMode(cfg.Shape)
	if err != nil {
		return nil, err
	}
	pal, err := palette.Parse(cfg.Palette)
	if err != nil {
		return nil, err
	}
	g := cfg.Physics.Gravity
	opts := sim.Options{
		Instances:   instancing.Config{Count: cfg.Instances.Count, Size: cfg.Instances.Size},
		Palette:     pal,
		Gravity:     mgl32.Vec3{g[0], g[1], g[2]},
		CellSize:    cfg.Physics.CellSize,
		Substeps:    cfg.Physics.Substeps,
		FixedStep:   cfg.Physics.FixedStep,
		MaxSubSteps: cfg.Physics.MaxSubSteps,
		MaxHeight:   cfg.Perturb.MaxHeight,
	}
	return sim.New(opts, shape.NewState(mode), rng, log)
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func runHeadless(cfg config.Config, log *zap.Logger, frames, toggleEvery int, seed uint64) error {
	if frames < 0 {
		return fmt.Errorf("headless: frames must be >= 0, got %d", frames)
	}
	s, err := newSimulation(cfg, newRand(seed), log)
	if err != nil {
		return err
	}
	defer s.Close()

	dt := cfg.Physics.FixedStep
	for f := 1; f <= frames; f++ {
		if toggleEvery > 0 && f%toggleEvery == 0 {
			mode := s.PointerMissed()
			log.Info("shape toggled", zap.Int("frame", f), zap.Stringer("mode", mode))
		}
		s.Update(dt)
	}
	st := s.Stats()
	log.Info("headless run finished",
		zap.Uint64("frames", st.Frame),
		zap.Uint64("steps", st.Steps),
		zap.Stringer("mode", st.Mode),
		zap.Int("instances", st.Instances),
		zap.Int("world_bodies", st.WorldBodies),
		zap.Int("generation", st.Generation),
		zap.String("pool", st.PoolID),
	)
	return nil
}
