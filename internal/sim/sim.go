// Package sim owns the per-frame loop: fixed-step physics, one perturbation, then a transform sync
// into the active instanced target. It rebuilds the body pool whenever the shape mode changes.
package sim

import (
	"fmt"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"instanced-shapes/internal/instancing"
	"instanced-shapes/internal/palette"
	"instanced-shapes/internal/perturb"
	"instanced-shapes/internal/physics"
	"instanced-shapes/internal/scenegraph"
	"instanced-shapes/internal/shape"
)

// Options configures a Simulation. A zero FixedStep, MaxSubSteps, MaxHeight or Palette falls back to
// the DefaultOptions value.
type Options struct {
	Instances   instancing.Config
	Palette     palette.Palette
	Gravity     mgl32.Vec3
	CellSize    float32
	Substeps    int
	FixedStep   float32
	MaxSubSteps int
	MaxHeight   float32
}

// DefaultOptions is 200 boxes of size 0.1 on a 60 Hz world.
func DefaultOptions() Options {
	return Options{
		Instances:   instancing.DefaultConfig(),
		Palette:     palette.MustParse(palette.Nice),
		Gravity:     physics.DefaultGravity,
		CellSize:    physics.DefaultCellSize,
		Substeps:    physics.DefaultSubsteps,
		FixedStep:   1.0 / 60.0,
		MaxSubSteps: 10,
		MaxHeight:   perturb.DefaultMaxHeight,
	}
}

// Stats is a snapshot for logs and overlays.
type Stats struct {
	Frame       uint64
	Steps       uint64
	Mode        shape.Mode
	Instances   int
	WorldBodies int
	Generation  int
	PoolID      string
	Perturbed   int // slot teleported by the last Update, -1 if none
}

// String formats the stats as a one-line status.
func (st Stats) String() string {
	return fmt.Sprintf("%s x%d | bodies %d | gen %d | frame %d | steps %d",
		st.Mode, st.Instances, st.WorldBodies, st.Generation, st.Frame, st.Steps)
}

// Simulation ties a physics world, the shape state, the body pool and the instanced target together.
// It is not safe for concurrent use; everything runs on the frame loop.
type Simulation struct {
	log    *zap.Logger
	opts   Options
	rng    *rand.Rand
	world  *physics.World
	ground physics.BodyID
	state  *shape.State
	colors *palette.Generator
	driver *perturb.Driver

	pool       *instancing.Pool
	target     *instancing.Target
	generation int
	cancel     func()

	accumulator float32
	frame       uint64
	steps       uint64
	perturbed   int
	closed      bool
}

// New builds the world with its ground plane and the pool for state's current mode, then follows state for toggles.
func New(opts Options, state *shape.State, rng *rand.Rand, log *zap.Logger) (*Simulation, error) {
	if opts.Instances.Size <= 0 {
		return nil, fmt.Errorf("sim: instance size must be > 0, got %g", opts.Instances.Size)
	}
	if opts.FixedStep <= 0 {
		opts.FixedStep = DefaultOptions().FixedStep
	}
	if opts.MaxSubSteps <= 0 {
		opts.MaxSubSteps = DefaultOptions().MaxSubSteps
	}
	if len(opts.Palette) == 0 {
		opts.Palette = DefaultOptions().Palette
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Simulation{
		log:   log,
		opts:  opts,
		rng:   rng,
		state: state,
		world: physics.NewWorld(
			physics.WithGravity(opts.Gravity),
			physics.WithCellSize(opts.CellSize),
			physics.WithSubsteps(opts.Substeps),
		),
		colors:    palette.NewGenerator(opts.Palette, rng),
		driver:    perturb.New(rng).WithMaxHeight(opts.MaxHeight),
		perturbed: -1,
	}
	s.ground = s.world.AddBody(physics.NewBody(physics.Plane(mgl32.Vec3{0, 1, 0}), mgl32.Vec3{}, 0, true))
	s.build(state.Mode())
	s.cancel = state.Subscribe(s.rebuild)

	log.Info("simulation started",
		zap.Stringer("mode", state.Mode()),
		zap.Int("count", opts.Instances.Count),
		zap.Float32("size", opts.Instances.Size),
		zap.Int("substeps", s.world.Substeps()),
	)
	return s, nil
}

func (s *Simulation) build(mode shape.Mode) {
	cfg := s.opts.Instances
	s.generation++
	s.pool = instancing.NewPool(s.world, mode, cfg, s.rng)
	s.target = instancing.NewTarget(instancing.GeometryFor(mode, cfg.Size), s.colors.Colors(cfg.Count), s.pool.Len())
	s.target.Sync(s.pool)
	s.log.Info("pool created",
		zap.Stringer("pool", s.pool.ID()),
		zap.Stringer("mode", mode),
		zap.Int("generation", s.generation),
		zap.Int("bodies", s.pool.Len()),
	)
}

func (s *Simulation) teardown() {
	if s.pool == nil {
		return
	}
	id, n := s.pool.ID(), s.pool.Len()
	s.pool.Close()
	s.pool = nil
	s.target = nil
	s.log.Info("pool removed", zap.Stringer("pool", id), zap.Int("bodies", n))
}

// rebuild replaces the pool and target with fresh ones for mode. The old bodies leave the world first.
func (s *Simulation) rebuild(mode shape.Mode) {
	if s.closed {
		return
	}
	s.teardown()
	s.build(mode)
}

// PointerMissed handles a click that hit nothing: the shape mode flips and the pool is rebuilt.
func (s *Simulation) PointerMissed() shape.Mode {
	return s.state.Toggle()
}

// Update advances one frame of dt seconds. Physics runs in fixed steps (at most MaxSubSteps per frame,
// surplus time is dropped), then one body is perturbed, then the target slots are refreshed.
func (s *Simulation) Update(dt float32) {
	if s.closed {
		return
	}
	s.frame++
	if dt > 0 {
		s.accumulator += dt
	}
	sub := 0
	for s.accumulator >= s.opts.FixedStep && sub < s.opts.MaxSubSteps {
		s.world.Step(s.opts.FixedStep)
		s.accumulator -= s.opts.FixedStep
		s.steps++
		sub++
	}
	if sub == s.opts.MaxSubSteps {
		s.accumulator = 0
	}

	s.perturbed = -1
	if i, ok := s.driver.Perturb(s.pool); ok {
		s.perturbed = i
	}
	s.target.Sync(s.pool)
}

// Scene describes the frame to draw.
func (s *Simulation) Scene() scenegraph.Description {
	return scenegraph.Build(s.target)
}

// World returns the physics world.
func (s *Simulation) World() *physics.World { return s.world }

// Pool returns the active body pool (nil after Close).
func (s *Simulation) Pool() *instancing.Pool { return s.pool }

// Target returns the active instanced target (nil after Close).
func (s *Simulation) Target() *instancing.Target { return s.target }

// Mode returns the active shape mode.
func (s *Simulation) Mode() shape.Mode { return s.state.Mode() }

// Stats returns counters for the current frame.
func (s *Simulation) Stats() Stats {
	st := Stats{
		Frame:       s.frame,
		Steps:       s.steps,
		Mode:        s.state.Mode(),
		WorldBodies: s.world.Len(),
		Generation:  s.generation,
		Perturbed:   s.perturbed,
	}
	if s.pool != nil {
		st.Instances = s.pool.Len()
		st.PoolID = s.pool.ID().String()
	}
	return st
}

// Close removes the pool from the world and stops following the shape state.
func (s *Simulation) Close() {
	if s.closed {
		return
	}
	s.teardown()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.world.RemoveBody(s.ground)
}
