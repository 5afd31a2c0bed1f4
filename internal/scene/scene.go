package scene

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"instanced-shapes/internal/picking"
	"instanced-shapes/internal/primitives"
	"instanced-shapes/internal/scenegraph"
)

// Scene holds the 3D camera and draws a scenegraph.Description between BeginMode3D and EndMode3D.
// The camera is fixed; it is re-read from every description so a description change moves it.
type Scene struct {
	Camera   rl.Camera3D
	registry *primitives.Registry
}

// New returns a scene whose camera matches d.
func New(d scenegraph.Description) *Scene {
	s := &Scene{registry: primitives.NewRegistry()}
	s.setCamera(d.Camera)
	return s
}

func (s *Scene) setCamera(c scenegraph.Camera) {
	s.Camera.Position = toVector3(c.Position)
	s.Camera.Target = toVector3(c.Target)
	s.Camera.Up = toVector3(c.Up)
	s.Camera.Fovy = c.Fovy
	s.Camera.Projection = rl.CameraPerspective
}

// PointerRay returns the world-space ray under the mouse cursor.
func (s *Scene) PointerRay() picking.Ray {
	ray := rl.GetScreenToWorldRay(rl.GetMousePosition(), s.Camera)
	return picking.Ray{
		Origin:    mgl32.Vec3{ray.Position.X, ray.Position.Y, ray.Position.Z},
		Direction: mgl32.Vec3{ray.Direction.X, ray.Direction.Y, ray.Direction.Z},
	}
}

// Draw clears to the background colour and renders the ground and the instanced bodies.
func (s *Scene) Draw(d scenegraph.Description) {
	s.setCamera(d.Camera)
	rl.ClearBackground(primitives.ColorFromHex(d.Background, 255, rl.SkyBlue))

	p := s.Camera.Position
	s.registry.SetView([3]float32{p.X, p.Y, p.Z}, d)

	rl.BeginMode3D(s.Camera)
	s.registry.DrawGround(d.Ground)
	s.registry.DrawInstanced(d.Instances)
	rl.EndMode3D()
}

// Unload releases GPU resources. Call before closing the window.
func (s *Scene) Unload() {
	s.registry.Unload()
}

func toVector3(v mgl32.Vec3) rl.Vector3 {
	return rl.NewVector3(v[0], v[1], v[2])
}
