package sim

import (
	"math/rand/v2"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"instanced-shapes/internal/instancing"
	"instanced-shapes/internal/physics"
	"instanced-shapes/internal/shape"
)

func newSim(t *testing.T, opts Options) (*Simulation, *shape.State) {
	t.Helper()
	state := shape.NewState(shape.Box)
	s, err := New(opts, state, rand.New(rand.NewPCG(10, 20)), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, state
}

func countKind(w *physics.World, kind physics.ShapeKind) int {
	n := 0
	for _, b := range w.Bodies() {
		if b.Shape.Kind == kind {
			n++
		}
	}
	return n
}

func TestNew_StartsWith200Boxes(t *testing.T) {
	s, _ := newSim(t, DefaultOptions())

	assert.Equal(t, shape.Box, s.Mode())
	require.Equal(t, 200, s.Pool().Len())
	assert.Equal(t, 200, countKind(s.World(), physics.ShapeBox))
	assert.Equal(t, 1, countKind(s.World(), physics.ShapePlane))
	for _, b := range s.World().Bodies() {
		if b.Shape.Kind != physics.ShapeBox {
			continue
		}
		assert.Equal(t, mgl32.Vec3{0.1, 0.1, 0.1}, b.Shape.HalfExtents)
		assert.InDelta(t, 1, b.Mass(), 1e-5)
	}
	assert.Equal(t, 200, s.Target().Len())
	assert.Equal(t, 200, s.Target().Colors().Len())
	assert.Equal(t, -1, s.Stats().Perturbed)
}

func TestPointerMissed_SwitchesToSpheres(t *testing.T) {
	s, state := newSim(t, DefaultOptions())
	oldPool := s.Pool()
	oldIDs := make([]physics.BodyID, oldPool.Len())
	for i := range oldIDs {
		oldIDs[i], _ = oldPool.Handle(i)
	}

	assert.Equal(t, shape.Sphere, s.PointerMissed())
	assert.Equal(t, shape.Sphere, state.Mode())

	assert.Equal(t, 0, countKind(s.World(), physics.ShapeBox))
	assert.Equal(t, 200, countKind(s.World(), physics.ShapeSphere))
	assert.Equal(t, 201, s.World().Len())
	for _, b := range s.World().Bodies() {
		if b.Shape.Kind == physics.ShapeSphere {
			assert.Equal(t, float32(0.1), b.Shape.Radius)
		}
	}
	for _, id := range oldIDs {
		_, ok := s.World().Body(id)
		assert.False(t, ok, "box body %d still in world", id)
	}
	assert.NotSame(t, oldPool, s.Pool())
	assert.Equal(t, shape.Sphere, s.Target().Geometry.Mode)
	assert.Equal(t, 2, s.Stats().Generation)
}

func TestSwitching_WorldStaysBounded(t *testing.T) {
	opts := DefaultOptions()
	opts.Instances = instancing.Config{Count: 30, Size: 0.1}
	s, _ := newSim(t, opts)

	for i := 0; i < 25; i++ {
		s.PointerMissed()
		s.Update(1.0 / 60)
		assert.Equal(t, 31, s.World().Len())
		assert.Equal(t, 30, s.Pool().Len())
	}
	assert.Equal(t, shape.Sphere, s.Mode())
}

func TestSwitching_ColoursStableAcrossModes(t *testing.T) {
	s, _ := newSim(t, DefaultOptions())
	before := s.Target().Colors().Floats()
	s.PointerMissed()
	assert.Equal(t, before, s.Target().Colors().Floats())
}

func TestUpdate_PerturbsOneBody(t *testing.T) {
	s, _ := newSim(t, DefaultOptions())
	s.Update(0)

	atOrigin := 0
	for i := 0; i < s.Pool().Len(); i++ {
		p, _ := s.Pool().Position(i)
		if p[0] == 0 && p[2] == 0 {
			atOrigin++
			assert.GreaterOrEqual(t, p[1], float32(0))
			assert.Less(t, p[1], float32(2))
		}
	}
	assert.Equal(t, 1, atOrigin)
	assert.Equal(t, uint64(0), s.Stats().Steps)

	p, _ := s.Pool().Position(s.Stats().Perturbed)
	assert.Equal(t, float32(0), p[0])
	assert.Equal(t, float32(0), p[2])
}

func TestUpdate_SyncsTargetAfterStep(t *testing.T) {
	s, _ := newSim(t, DefaultOptions())
	for i := 0; i < 10; i++ {
		s.Update(1.0 / 60)
	}
	for i := 0; i < s.Pool().Len(); i++ {
		p, _ := s.Pool().Position(i)
		assert.Equal(t, p.Vec4(1), s.Target().Transforms[i].Col(3))
	}
}

func TestUpdate_FixedSteps(t *testing.T) {
	opts := DefaultOptions()
	opts.Instances.Count = 5
	s, _ := newSim(t, opts)

	s.Update(0.5 / 60)
	assert.Equal(t, uint64(0), s.Stats().Steps)
	s.Update(0.6 / 60)
	assert.Equal(t, uint64(1), s.Stats().Steps)

	// A long stall is capped at MaxSubSteps.
	s.Update(5)
	assert.Equal(t, uint64(1+opts.MaxSubSteps), s.Stats().Steps)
	assert.Equal(t, uint64(3), s.Stats().Frame)
}

// runResting advances frames and, every 150th frame, asserts that no body centre is below floor.
// Bodies teleported in the last few frames may still overlap the pile and are skipped.
func runResting(t *testing.T, s *Simulation, frames int, floor float32) {
	t.Helper()
	recent := make(map[int]int)
	for f := 1; f <= frames; f++ {
		s.Update(1.0 / 60)
		recent[s.Stats().Perturbed] = f
		if f%150 != 0 {
			continue
		}
		for i := 0; i < s.Pool().Len(); i++ {
			if last, ok := recent[i]; ok && f-last < 3 {
				continue
			}
			p, _ := s.Pool().Position(i)
			assert.Greater(t, p[1], floor, "%s frame %d: instance %d sank to y=%g", s.Mode(), f, i, p[1])
		}
	}
}

func TestUpdate_DefaultPileRestsOnGround(t *testing.T) {
	opts := DefaultOptions()
	s, _ := newSim(t, opts)
	// A centre may sit at most slop below its resting height on the plane.
	const slop = float32(0.025)
	floor := opts.Instances.Size - slop

	runResting(t, s, 600, floor)

	tumbled := 0
	for _, b := range s.World().Bodies() {
		if b.Shape.Kind == physics.ShapeBox && math32.Abs(b.Orientation().W) < 0.9999 {
			tumbled++
		}
	}
	assert.Greater(t, tumbled, 0, "no box ever rotated")

	s.PointerMissed()
	runResting(t, s, 300, floor)
}

func TestZeroCount_NoInstancesNoPerturbation(t *testing.T) {
	opts := DefaultOptions()
	opts.Instances.Count = 0
	s, _ := newSim(t, opts)

	assert.NotPanics(t, func() {
		s.Update(1.0 / 60)
		s.PointerMissed()
		s.Update(1.0 / 60)
	})
	assert.Equal(t, 0, s.Target().Len())
	assert.Equal(t, 1, s.World().Len())
}

func TestNew_RejectsBadSize(t *testing.T) {
	opts := DefaultOptions()
	opts.Instances.Size = 0
	_, err := New(opts, shape.NewState(shape.Box), rand.New(rand.NewPCG(1, 1)), nil)
	assert.Error(t, err)
}

func TestClose_RemovesEverything(t *testing.T) {
	state := shape.NewState(shape.Sphere)
	s, err := New(DefaultOptions(), state, rand.New(rand.NewPCG(1, 1)), nil)
	require.NoError(t, err)
	require.Equal(t, shape.Sphere, s.Mode())

	s.Close()
	assert.Equal(t, 0, s.World().Len())
	assert.Nil(t, s.Pool())

	state.Toggle()
	assert.Equal(t, 0, s.World().Len())
	assert.NotPanics(t, func() { s.Update(1.0 / 60) })
	s.Close()
}

func TestScene_UsesActiveTarget(t *testing.T) {
	s, _ := newSim(t, DefaultOptions())
	assert.Same(t, s.Target(), s.Scene().Instances)
	s.PointerMissed()
	assert.Same(t, s.Target(), s.Scene().Instances)
}

func TestStats_String(t *testing.T) {
	st := Stats{Frame: 7, Steps: 6, Mode: shape.Sphere, Instances: 200, WorldBodies: 201, Generation: 2, Perturbed: 4}
	assert.Equal(t, "sphere x200 | bodies 201 | gen 2 | frame 7 | steps 6", st.String())
}
