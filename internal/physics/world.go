package physics

import (
	"github.com/akmonengine/feather"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultSubsteps is the number of solver substeps per Step.
	DefaultSubsteps = 20
	// DefaultCellSize is the edge of a broadphase grid cell, in world units.
	DefaultCellSize = float32(6)

	gridCells = 4096
)

// DefaultGravity pulls along -Y (scene is Y-up).
var DefaultGravity = mgl32.Vec3{0, -9.81, 0}

// Option configures a World.
type Option func(*World)

// WithGravity sets the gravity vector.
func WithGravity(g mgl32.Vec3) Option {
	return func(w *World) { w.gravity = g }
}

// WithSubsteps sets the solver substeps per Step (n <= 0 keeps the default).
func WithSubsteps(n int) Option {
	return func(w *World) {
		if n > 0 {
			w.substeps = n
		}
	}
}

// WithCellSize sets the broadphase grid cell edge (size <= 0 keeps the default).
func WithCellSize(size float32) Option {
	return func(w *World) {
		if size > 0 {
			w.cellSize = size
		}
	}
}

// World owns the bodies of one scene and steps them with the feather engine. It hands out stable
// IDs so callers never hold engine pointers.
type World struct {
	gravity  mgl32.Vec3
	substeps int
	cellSize float32

	engine *feather.World
	bodies map[BodyID]*Body
	nextID BodyID
}

// NewWorld returns an empty world with default gravity.
func NewWorld(opts ...Option) *World {
	w := &World{
		gravity:  DefaultGravity,
		substeps: DefaultSubsteps,
		cellSize: DefaultCellSize,
		bodies:   make(map[BodyID]*Body),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.engine = &feather.World{
		Gravity:     vec64(w.gravity),
		Substeps:    w.substeps,
		SpatialGrid: feather.NewSpatialGrid(float64(w.cellSize), gridCells),
	}
	return w
}

// Gravity returns the gravity vector.
func (w *World) Gravity() mgl32.Vec3 {
	return w.gravity
}

// SetGravity sets the gravity vector (e.g. (0, -9.81, 0) for down in -Y).
func (w *World) SetGravity(g mgl32.Vec3) {
	w.gravity = g
	w.engine.Gravity = vec64(g)
}

// Substeps returns the solver substeps per Step.
func (w *World) Substeps() int {
	return w.substeps
}

// AddBody assigns b a fresh ID and adds it to the world.
func (w *World) AddBody(b *Body) BodyID {
	w.nextID++
	b.ID = w.nextID
	w.bodies[b.ID] = b
	w.engine.AddBody(b.rb)
	return b.ID
}

// RemoveBody removes the body with the given ID. It reports false if no such body is live.
func (w *World) RemoveBody(id BodyID) bool {
	b, ok := w.bodies[id]
	if !ok {
		return false
	}
	delete(w.bodies, id)
	kept := w.engine.Bodies[:0]
	for _, rb := range w.engine.Bodies {
		if rb != b.rb {
			kept = append(kept, rb)
		}
	}
	clear(w.engine.Bodies[len(kept):])
	w.engine.Bodies = kept
	return true
}

// Body returns the live body with the given ID.
func (w *World) Body(id BodyID) (*Body, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// Len returns the number of live bodies, static ones included.
func (w *World) Len() int {
	return len(w.bodies)
}

// Bodies returns a snapshot of the live bodies. Order is unspecified.
func (w *World) Bodies() []*Body {
	out := make([]*Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, b)
	}
	return out
}

// SetPosition teleports a body. Velocity and orientation are left as they are.
func (w *World) SetPosition(id BodyID, pos mgl32.Vec3) bool {
	b, ok := w.bodies[id]
	if !ok {
		return false
	}
	b.teleport(pos)
	return true
}

// Transform returns the current position and orientation of a body.
func (w *World) Transform(id BodyID) (mgl32.Vec3, mgl32.Quat, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return mgl32.Vec3{}, mgl32.Quat{}, false
	}
	return b.Position(), b.Orientation(), true
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}
	w.engine.Step(float64(dt))
}
