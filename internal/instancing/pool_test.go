package instancing

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instanced-shapes/internal/palette"
	"instanced-shapes/internal/physics"
	"instanced-shapes/internal/shape"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(3, 5))
}

func TestNewPool_BoxBodies(t *testing.T) {
	w := physics.NewWorld()
	p := NewPool(w, shape.Box, DefaultConfig(), testRNG())

	require.Equal(t, 200, p.Len())
	require.Equal(t, 200, w.Len())
	assert.Equal(t, shape.Box, p.Mode())
	for i := 0; i < p.Len(); i++ {
		id, ok := p.Handle(i)
		require.True(t, ok)
		b, ok := w.Body(id)
		require.True(t, ok)
		assert.Equal(t, physics.ShapeBox, b.Shape.Kind)
		assert.Equal(t, mgl32.Vec3{0.1, 0.1, 0.1}, b.Shape.HalfExtents)
		assert.InDelta(t, 1, b.Mass(), 1e-5)
		assert.False(t, b.Static)

		pos := b.Position()
		assert.True(t, pos[0] >= -0.5 && pos[0] < 0.5, "x out of range: %v", pos)
		assert.True(t, pos[1] >= 0 && pos[1] < 2, "y out of range: %v", pos)
		assert.True(t, pos[2] >= -0.5 && pos[2] < 0.5, "z out of range: %v", pos)
	}
}

func TestNewPool_SphereBodies(t *testing.T) {
	w := physics.NewWorld()
	p := NewPool(w, shape.Sphere, Config{Count: 10, Size: 0.25}, testRNG())
	require.Equal(t, 10, p.Len())
	for _, b := range w.Bodies() {
		assert.Equal(t, physics.ShapeSphere, b.Shape.Kind)
		assert.Equal(t, float32(0.25), b.Shape.Radius)
	}
}

func TestNewPool_ZeroCount(t *testing.T) {
	w := physics.NewWorld()
	p := NewPool(w, shape.Box, Config{Count: 0, Size: 0.1}, testRNG())
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 0, w.Len())
	_, ok := p.Handle(0)
	assert.False(t, ok)
	assert.False(t, p.SetPosition(0, mgl32.Vec3{}))
}

func TestPool_CloseRemovesBodies(t *testing.T) {
	w := physics.NewWorld()
	ground := w.AddBody(physics.NewBody(physics.Plane(mgl32.Vec3{0, 1, 0}), mgl32.Vec3{}, 0, true))
	p := NewPool(w, shape.Box, Config{Count: 20, Size: 0.1}, testRNG())
	require.Equal(t, 21, w.Len())

	p.Close()
	assert.Equal(t, 1, w.Len())
	assert.Equal(t, 0, p.Len())
	_, ok := w.Body(ground)
	assert.True(t, ok)

	p.Close()
	assert.Equal(t, 1, w.Len())
}

func TestPool_SetPositionAndTransform(t *testing.T) {
	w := physics.NewWorld()
	p := NewPool(w, shape.Box, Config{Count: 3, Size: 0.1}, testRNG())

	require.True(t, p.SetPosition(1, mgl32.Vec3{0, 1.25, 0}))
	pos, ok := p.Position(1)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0, 1.25, 0}, pos)

	m, ok := p.Transform(1)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec4{0, 1.25, 0, 1}, m.Col(3))

	_, ok = p.Transform(3)
	assert.False(t, ok)
	assert.False(t, p.SetPosition(-1, mgl32.Vec3{}))
}

func TestPool_HandlesNotReusedAcrossGenerations(t *testing.T) {
	w := physics.NewWorld()
	first := NewPool(w, shape.Box, Config{Count: 5, Size: 0.1}, testRNG())
	old := make(map[physics.BodyID]bool)
	for i := 0; i < first.Len(); i++ {
		id, _ := first.Handle(i)
		old[id] = true
	}
	first.Close()

	second := NewPool(w, shape.Sphere, Config{Count: 5, Size: 0.1}, testRNG())
	assert.NotEqual(t, first.ID(), second.ID())
	for i := 0; i < second.Len(); i++ {
		id, _ := second.Handle(i)
		assert.False(t, old[id], "handle %d reused", id)
	}
}

func TestTarget_SyncAndColours(t *testing.T) {
	w := physics.NewWorld()
	cfg := Config{Count: 8, Size: 0.1}
	p := NewPool(w, shape.Box, cfg, testRNG())
	colors := palette.Generate(cfg.Count, palette.MustParse(palette.Nice), testRNG())
	tgt := NewTarget(GeometryFor(shape.Box, cfg.Size), colors, cfg.Count)

	require.Equal(t, 8, tgt.Len())
	assert.Equal(t, float32(0.2), tgt.Geometry.Extent)
	assert.True(t, tgt.CastShadow)
	assert.True(t, tgt.ReceiveShadow)

	tgt.Sync(p)
	for i := 0; i < tgt.Len(); i++ {
		pos, _ := p.Position(i)
		assert.Equal(t, pos.Vec4(1), tgt.Transforms[i].Col(3))
		assert.Equal(t, colors.At(i), tgt.Color(i))
	}

	w.Step(1.0 / 60)
	tgt.Sync(p)
	pos, _ := p.Position(0)
	assert.Equal(t, pos.Vec4(1), tgt.Transforms[0].Col(3))
}

func TestGeometryFor(t *testing.T) {
	s := GeometryFor(shape.Sphere, 0.1)
	assert.Equal(t, float32(0.1), s.Radius)
	assert.Equal(t, SphereSegments, s.Segments)
	assert.Zero(t, s.Extent)

	b := GeometryFor(shape.Box, 0.1)
	assert.Equal(t, float32(0.2), b.Extent)
	assert.Zero(t, b.Radius)
}

func TestTarget_InstanceDataCarriesColours(t *testing.T) {
	w := physics.NewWorld()
	cfg := Config{Count: 200, Size: 0.1}
	p := NewPool(w, shape.Box, cfg, testRNG())
	colors := palette.Generate(cfg.Count, palette.MustParse(palette.Nice), testRNG())
	tgt := NewTarget(GeometryFor(shape.Box, cfg.Size), colors, cfg.Count)
	for i := 0; i < 30; i++ {
		w.Step(1.0 / 60)
	}
	tgt.Sync(p)

	attr := tgt.ColorAttribute()
	require.Len(t, attr, 3*cfg.Count)
	assert.Equal(t, colors.Floats(), attr)

	data := tgt.InstanceData()
	require.Len(t, data, cfg.Count)
	for i, m := range data {
		c := tgt.Color(i)
		assert.Equal(t, c, [3]float32{m[3], m[7], m[11]}, "slot %d colour", i)
		// Restoring the bottom row gives back the slot transform.
		m[3], m[7], m[11] = 0, 0, 0
		assert.Equal(t, tgt.Transforms[i], m, "slot %d transform", i)
	}
	// The transforms themselves are untouched.
	for _, m := range tgt.Transforms {
		assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, m.Row(3))
	}
}

func TestTarget_ColorAttributeShortBufferIsWhite(t *testing.T) {
	colors := palette.Generate(1, palette.MustParse([]string{"#000000"}), testRNG())
	tgt := NewTarget(GeometryFor(shape.Sphere, 0.1), colors, 3)
	assert.Equal(t, []float32{0, 0, 0, 1, 1, 1, 1, 1, 1}, tgt.ColorAttribute())
	assert.Len(t, tgt.InstanceData(), 3)
}
