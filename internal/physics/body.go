package physics

import (
	"github.com/akmonengine/feather/actor"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyID identifies a body inside a World. IDs are handed out in increasing order and never reused,
// so a stale ID from a removed body can never address a newer one.
type BodyID uint64

// ShapeKind tags the variant held by a Shape.
type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapePlane
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapePlane:
		return "plane"
	default:
		return "unknown"
	}
}

// Shape is the collision descriptor of a body. Only the fields of the active Kind are meaningful.
// Planes are infinite and pass through the body position.
type Shape struct {
	Kind        ShapeKind
	HalfExtents mgl32.Vec3
	Radius      float32
	Normal      mgl32.Vec3
}

// Box returns a box shape with the given half extents.
func Box(halfExtents mgl32.Vec3) Shape {
	return Shape{Kind: ShapeBox, HalfExtents: halfExtents}
}

// Sphere returns a sphere shape with the given radius.
func Sphere(radius float32) Shape {
	return Shape{Kind: ShapeSphere, Radius: radius}
}

// Plane returns an infinite plane with the given normal (normalized here).
func Plane(normal mgl32.Vec3) Shape {
	return Shape{Kind: ShapePlane, Normal: normal.Normalize()}
}

// collider builds the engine shape. position only matters for planes, whose offset is baked into Distance.
func (s Shape) collider(position mgl32.Vec3) actor.ShapeInterface {
	switch s.Kind {
	case ShapeSphere:
		return &actor.Sphere{Radius: float64(s.Radius)}
	case ShapePlane:
		n := vec64(s.Normal)
		return &actor.Plane{Normal: n, Distance: n.Dot(vec64(position))}
	default:
		return &actor.Box{HalfExtents: vec64(s.HalfExtents)}
	}
}

// Material is the surface and damping response applied to a body at creation.
type Material struct {
	Restitution    float32
	LinearDamping  float32
	AngularDamping float32
}

// DefaultMaterial is a slightly bouncy surface with light damping.
var DefaultMaterial = Material{
	Restitution:    0.3,
	LinearDamping:  0.01,
	AngularDamping: 0.01,
}

// Body is a rigid body simulated by the engine. Static bodies do not move and are not affected
// by gravity or contacts. Shape and ID are fixed once the body is in a world.
type Body struct {
	ID     BodyID
	Shape  Shape
	Static bool

	rb *actor.RigidBody
}

// NewBody returns a body with the given shape and position at rest with identity orientation.
// mass <= 0 falls back to 1; static bodies have infinite mass. The ID is assigned by World.AddBody.
func NewBody(shape Shape, position mgl32.Vec3, mass float32, static bool) *Body {
	return NewBodyWithMaterial(shape, position, mass, static, DefaultMaterial)
}

// NewBodyWithMaterial is NewBody with an explicit surface material.
func NewBodyWithMaterial(shape Shape, position mgl32.Vec3, mass float32, static bool, m Material) *Body {
	if mass <= 0 {
		mass = 1
	}
	col := shape.collider(position)
	transform := actor.Transform{Position: vec64(position), Rotation: mgl64.QuatIdent()}
	bodyType := actor.BodyTypeDynamic
	density := 0.0
	if static {
		bodyType = actor.BodyTypeStatic
	} else {
		// The engine derives mass from density and volume.
		density = float64(mass) / col.ComputeMass(1)
	}
	if shape.Kind == ShapePlane {
		transform.Position = mgl64.Vec3{}
	}

	rb := actor.NewRigidBody(transform, col, bodyType, density)
	rb.Material.Restitution = float64(m.Restitution)
	rb.Material.LinearDamping = float64(m.LinearDamping)
	rb.Material.AngularDamping = float64(m.AngularDamping)

	return &Body{Shape: shape, Static: static, rb: rb}
}

// Mass returns the body mass (+Inf for static bodies).
func (b *Body) Mass() float32 {
	return float32(b.rb.Material.GetMass())
}

// Position returns the centre of the body.
func (b *Body) Position() mgl32.Vec3 {
	return vec32(b.rb.Transform.Position)
}

// Orientation returns the rotation of the body.
func (b *Body) Orientation() mgl32.Quat {
	q := b.rb.Transform.Rotation
	return mgl32.Quat{W: float32(q.W), V: vec32(q.V)}
}

// Velocity returns the linear velocity.
func (b *Body) Velocity() mgl32.Vec3 {
	return vec32(b.rb.Velocity)
}

// AngularVelocity returns the angular velocity in world space.
func (b *Body) AngularVelocity() mgl32.Vec3 {
	return vec32(b.rb.AngularVelocity)
}

// SetVelocity overwrites the linear velocity.
func (b *Body) SetVelocity(v mgl32.Vec3) {
	b.rb.Velocity = vec64(v)
	b.rb.IsSleeping = false
}

// Transform returns the body's model matrix (translation * rotation).
func (b *Body) Transform() mgl32.Mat4 {
	p := b.Position()
	return mgl32.Translate3D(p[0], p[1], p[2]).Mul4(b.Orientation().Mat4())
}

// teleport moves the body without touching its velocity. The previous transform moves with it so
// the solver does not read the jump as motion.
func (b *Body) teleport(pos mgl32.Vec3) {
	p := vec64(pos)
	b.rb.Transform.Position = p
	b.rb.PreviousTransform.Position = p
	b.rb.IsSleeping = false
}

func vec64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func vec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
