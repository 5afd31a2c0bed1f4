package picking

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"instanced-shapes/internal/instancing"
	"instanced-shapes/internal/scenegraph"
	"instanced-shapes/internal/shape"
)

// Ray is a pointer ray in world space. Direction need not be normalized.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// Miss reports whether r passes every rendered object of d: the ground and all instances.
func Miss(r Ray, d scenegraph.Description) bool {
	if HitsGround(r, d.Ground) {
		return false
	}
	if d.Instances != nil && HitsInstance(r, d.Instances) >= 0 {
		return false
	}
	return true
}

// HitsGround reports whether r crosses the square ground in front of its origin.
func HitsGround(r Ray, g scenegraph.Ground) bool {
	n := g.Normal()
	denom := n.Dot(r.Direction)
	if math32.Abs(denom) < 1e-8 {
		return false
	}
	t := -n.Dot(r.Origin) / denom
	if t < 0 {
		return false
	}
	p := r.Origin.Add(r.Direction.Mul(t))
	half := g.Size / 2
	// The ground lies in the XZ plane after its rotation.
	return math32.Abs(p[0]) <= half && math32.Abs(p[2]) <= half
}

// HitsInstance returns the index of the nearest instance of tgt hit by r, or -1.
func HitsInstance(r Ray, tgt *instancing.Target) int {
	best, bestT := -1, math32.Inf(1)
	for i, m := range tgt.Transforms {
		t, ok := hitInstance(r, m, tgt.Geometry)
		if ok && t < bestT {
			best, bestT = i, t
		}
	}
	return best
}

// hitInstance tests r against one instance in that instance's local space.
func hitInstance(r Ray, model mgl32.Mat4, geom instancing.Geometry) (float32, bool) {
	inv := model.Inv()
	o := inv.Mul4x1(r.Origin.Vec4(1)).Vec3()
	dir := inv.Mul4x1(r.Direction.Vec4(0)).Vec3()
	if geom.Mode == shape.Sphere {
		return raySphere(o, dir, geom.Radius)
	}
	h := geom.Extent / 2
	return rayBox(o, dir, mgl32.Vec3{h, h, h})
}

// raySphere intersects a ray with a sphere of radius r at the origin.
func raySphere(o, d mgl32.Vec3, r float32) (float32, bool) {
	a := d.Dot(d)
	if a == 0 {
		return 0, false
	}
	b := o.Dot(d)
	c := o.Dot(o) - r*r
	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	sq := math32.Sqrt(disc)
	t := (-b - sq) / a
	if t < 0 {
		t = (-b + sq) / a
	}
	return t, t >= 0
}

// rayBox is the slab test against an origin-centred box with half extents h.
func rayBox(o, d, h mgl32.Vec3) (float32, bool) {
	tmin, tmax := math32.Inf(-1), math32.Inf(1)
	for i := 0; i < 3; i++ {
		if math32.Abs(d[i]) < 1e-12 {
			if o[i] < -h[i] || o[i] > h[i] {
				return 0, false
			}
			continue
		}
		t1 := (-h[i] - o[i]) / d[i]
		t2 := (h[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
