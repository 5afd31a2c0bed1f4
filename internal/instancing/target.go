package instancing

import (
	"github.com/go-gl/mathgl/mgl32"

	"instanced-shapes/internal/palette"
	"instanced-shapes/internal/shape"
)

// SphereSegments is the width/height segment count of the sphere geometry.
const SphereSegments = 48

// Geometry describes the mesh every instance of a target shares.
type Geometry struct {
	Mode shape.Mode
	// Extent is the full box edge length (twice the half extent), or 0 for spheres.
	Extent float32
	// Radius is the sphere radius, or 0 for boxes.
	Radius   float32
	Segments int
}

// GeometryFor returns the mesh matching the collision shape of a pool built with the same mode and size.
func GeometryFor(mode shape.Mode, size float32) Geometry {
	if mode == shape.Sphere {
		return Geometry{Mode: mode, Radius: size, Segments: SphereSegments}
	}
	return Geometry{Mode: mode, Extent: 2 * size}
}

// Target is the instanced draw object for one pool generation: one transform slot per instance plus the
// per-instance colour buffer. Slot i always shows body i of the pool it is synced from.
type Target struct {
	Geometry      Geometry
	Transforms    []mgl32.Mat4
	CastShadow    bool
	ReceiveShadow bool

	colors     palette.Buffer
	colorAttr  []float32
	instanceTx []mgl32.Mat4
}

// NewTarget allocates count slots (identity transforms) for the given geometry and colours.
// colors must hold count entries.
func NewTarget(geom Geometry, colors palette.Buffer, count int) *Target {
	if count < 0 {
		count = 0
	}
	t := &Target{
		Geometry:      geom,
		Transforms:    make([]mgl32.Mat4, count),
		CastShadow:    true,
		ReceiveShadow: true,
		colors:        colors,
		colorAttr:     colors.Floats(),
	}
	for i := range t.Transforms {
		t.Transforms[i] = mgl32.Ident4()
	}
	return t
}

// Len returns the number of instance slots.
func (t *Target) Len() int {
	return len(t.Transforms)
}

// Colors returns the colour buffer shared by the slots.
func (t *Target) Colors() palette.Buffer {
	return t.colors
}

// Color returns the linear RGB colour of slot i.
func (t *Target) Color(i int) [3]float32 {
	return t.colors.At(i)
}

// ColorAttribute returns the flat linear RGB stream (3 floats per slot) read by the instancing shader.
// Slots past the end of the colour buffer are white.
func (t *Target) ColorAttribute() []float32 {
	if len(t.colorAttr) < 3*t.Len() {
		attr := make([]float32, 3*t.Len())
		n := copy(attr, t.colorAttr)
		for i := n; i < len(attr); i++ {
			attr[i] = 1
		}
		t.colorAttr = attr
	}
	return t.colorAttr[:3*t.Len()]
}

// InstanceData returns the per-instance stream for one batched draw: the slot transform with the slot
// colour written into its bottom row (m[3], m[7], m[11]). Rigid transforms keep that row at (0, 0, 0, 1),
// so the shader reads the colour back and restores the zeros. The returned slice is reused between calls.
func (t *Target) InstanceData() []mgl32.Mat4 {
	if cap(t.instanceTx) < t.Len() {
		t.instanceTx = make([]mgl32.Mat4, t.Len())
	}
	t.instanceTx = t.instanceTx[:t.Len()]
	attr := t.ColorAttribute()
	for i, m := range t.Transforms {
		m[3], m[7], m[11] = attr[3*i], attr[3*i+1], attr[3*i+2]
		t.instanceTx[i] = m
	}
	return t.instanceTx
}

// Sync copies every body transform of p into the matching slot.
func (t *Target) Sync(p *Pool) {
	n := min(len(t.Transforms), p.Len())
	for i := 0; i < n; i++ {
		if m, ok := p.Transform(i); ok {
			t.Transforms[i] = m
		}
	}
}
