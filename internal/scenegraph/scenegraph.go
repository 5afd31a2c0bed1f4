// Package scenegraph describes the scene as plain data. Renderers consume a Description; nothing here
// depends on a rendering engine.
package scenegraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"instanced-shapes/internal/instancing"
)

// Label is the hint drawn over the canvas.
const Label = "* click to change shape"

// Camera is a perspective camera looking at Target.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	Fovy     float32
}

// HemisphereLight lights from the sky colour above and the ground colour below.
type HemisphereLight struct {
	Sky       string
	Ground    string
	Intensity float32
}

// SpotLight is a light at Position aimed at the origin.
type SpotLight struct {
	Position   mgl32.Vec3
	Angle      float32
	Penumbra   float32
	Decay      float32
	Intensity  float32
	CastShadow bool
}

// Ground is the square plane bodies land on. Rotation is applied about X.
type Ground struct {
	Size          float32
	RotationX     float32
	Color         string
	ReceiveShadow bool
}

// Description is everything one frame needs: fixed set pieces plus the active instanced target.
type Description struct {
	Background string
	Camera     Camera
	Hemisphere HemisphereLight
	Spot       SpotLight
	Ground     Ground
	Instances  *instancing.Target
	Label      string
	Shadows    bool
}

// Build returns the scene around target. target may be nil when no instances exist.
func Build(target *instancing.Target) Description {
	return Description{
		Background: "#add8e6",
		Camera: Camera{
			Position: mgl32.Vec3{-1, 1, 2.5},
			Target:   mgl32.Vec3{0, 0, 0},
			Up:       mgl32.Vec3{0, 1, 0},
			Fovy:     50,
		},
		Hemisphere: HemisphereLight{
			Sky:       "#ffffff",
			Ground:    "#444444",
			Intensity: 0.35 * math.Pi,
		},
		Spot: SpotLight{
			Position:   mgl32.Vec3{10, 10, 10},
			Angle:      0.3,
			Penumbra:   1,
			Decay:      0,
			Intensity:  2 * math.Pi,
			CastShadow: true,
		},
		Ground: Ground{
			Size:          10,
			RotationX:     -math.Pi / 2,
			Color:         "#171717",
			ReceiveShadow: true,
		},
		Instances: target,
		Label:     Label,
		Shadows:   true,
	}
}

// Normal returns the world-space normal of the ground after its rotation (a plane's local normal is +Z).
func (g Ground) Normal() mgl32.Vec3 {
	return mgl32.HomogRotate3DX(g.RotationX).Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3()
}
