package perturb

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaxHeight bounds the drop height of a perturbed body.
const DefaultMaxHeight = float32(2)

// Teleporter is the per-index view of a body pool the driver needs.
type Teleporter interface {
	Len() int
	SetPosition(i int, pos mgl32.Vec3) bool
}

// Driver moves one random body back above the origin each time Perturb is called.
type Driver struct {
	rng       *rand.Rand
	maxHeight float32
}

// New returns a driver using rng and DefaultMaxHeight.
func New(rng *rand.Rand) *Driver {
	return &Driver{rng: rng, maxHeight: DefaultMaxHeight}
}

// WithMaxHeight returns the driver with heights drawn from [0, h) instead. h <= 0 keeps the current value.
func (d *Driver) WithMaxHeight(h float32) *Driver {
	if h > 0 {
		d.maxHeight = h
	}
	return d
}

// Perturb picks i = floor(rand * Len()) and sets body i to (0, rand*maxHeight, 0).
// Velocity is not reset, so a falling body keeps its momentum after the teleport.
// With no bodies it does nothing and returns (-1, false).
func (d *Driver) Perturb(t Teleporter) (int, bool) {
	n := t.Len()
	if n <= 0 {
		return -1, false
	}
	i := int(d.rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	y := d.rng.Float32() * d.maxHeight
	return i, t.SetPosition(i, mgl32.Vec3{0, y, 0})
}
