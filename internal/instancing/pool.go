package instancing

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"instanced-shapes/internal/physics"
	"instanced-shapes/internal/shape"
)

const (
	DefaultCount = 200
	DefaultSize  = float32(0.1)
	// BodyMass is the mass of every pooled body.
	BodyMass = float32(1)
)

// Config sizes a pool. Count may be 0 (no instances); Size is the box half extent or sphere radius.
type Config struct {
	Count int
	Size  float32
}

// DefaultConfig returns 200 instances of size 0.1.
func DefaultConfig() Config {
	return Config{Count: DefaultCount, Size: DefaultSize}
}

// ShapeFor maps a mode to its collision shape: a box with all half extents = size, or a sphere of radius size.
func ShapeFor(mode shape.Mode, size float32) physics.Shape {
	if mode == shape.Sphere {
		return physics.Sphere(size)
	}
	return physics.Box(mgl32.Vec3{size, size, size})
}

// SpawnPosition draws a start position scattered above the ground: x, z in [-0.5, 0.5), y in [0, 2).
func SpawnPosition(rng *rand.Rand) mgl32.Vec3 {
	return mgl32.Vec3{rng.Float32() - 0.5, rng.Float32() * 2, rng.Float32() - 0.5}
}

// Pool is one generation of bodies for a single mode. Instance index i always addresses the same body
// until Close; a new mode gets a new Pool, never a reused one.
type Pool struct {
	id      uuid.UUID
	world   *physics.World
	mode    shape.Mode
	size    float32
	handles []physics.BodyID
	closed  bool
}

// NewPool creates cfg.Count bodies of the mode's shape in world.
func NewPool(world *physics.World, mode shape.Mode, cfg Config, rng *rand.Rand) *Pool {
	p := &Pool{
		id:    uuid.New(),
		world: world,
		mode:  mode,
		size:  cfg.Size,
	}
	if cfg.Count <= 0 {
		return p
	}
	sh := ShapeFor(mode, cfg.Size)
	p.handles = make([]physics.BodyID, cfg.Count)
	for i := range p.handles {
		p.handles[i] = world.AddBody(physics.NewBody(sh, SpawnPosition(rng), BodyMass, false))
	}
	return p
}

// ID identifies this pool generation.
func (p *Pool) ID() uuid.UUID { return p.id }

// Mode returns the shape mode the pool was built for.
func (p *Pool) Mode() shape.Mode { return p.mode }

// Size returns the box half extent or sphere radius.
func (p *Pool) Size() float32 { return p.size }

// Len returns the number of live instances (0 after Close).
func (p *Pool) Len() int { return len(p.handles) }

// Handle returns the body handle behind instance i.
func (p *Pool) Handle(i int) (physics.BodyID, bool) {
	if i < 0 || i >= len(p.handles) {
		return 0, false
	}
	return p.handles[i], true
}

// Position returns the current position of instance i.
func (p *Pool) Position(i int) (mgl32.Vec3, bool) {
	id, ok := p.Handle(i)
	if !ok {
		return mgl32.Vec3{}, false
	}
	pos, _, ok := p.world.Transform(id)
	return pos, ok
}

// Transform returns the model matrix of instance i.
func (p *Pool) Transform(i int) (mgl32.Mat4, bool) {
	id, ok := p.Handle(i)
	if !ok {
		return mgl32.Ident4(), false
	}
	b, ok := p.world.Body(id)
	if !ok {
		return mgl32.Ident4(), false
	}
	return b.Transform(), true
}

// SetPosition teleports instance i, leaving its velocity and orientation alone.
func (p *Pool) SetPosition(i int, pos mgl32.Vec3) bool {
	id, ok := p.Handle(i)
	if !ok {
		return false
	}
	return p.world.SetPosition(id, pos)
}

// Close removes every body of the pool from the world. Calling it again does nothing.
func (p *Pool) Close() {
	if p.closed {
		return
	}
	p.closed = true
	for _, id := range p.handles {
		p.world.RemoveBody(id)
	}
	p.handles = nil
}
