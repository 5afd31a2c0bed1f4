package primitives

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"instanced-shapes/internal/instancing"
	"instanced-shapes/internal/scenegraph"
	"instanced-shapes/internal/shape"
)

// Registry owns the GPU side of the instanced target: the shared mesh, the instancing material and
// the per-instance matrix stream. GPU resources are created lazily on the first draw, after the
// window/OpenGL context exists, and the mesh is replaced whenever the target geometry changes.
type Registry struct {
	mesh       rl.Mesh
	geometry   instancing.Geometry
	meshLoaded bool

	mtl       rl.Material
	mtlLoaded bool

	instances []rl.Matrix

	viewPos  [3]float32
	lightDir [3]float32
	lights   lighting
}

// spotScale keeps a fully lit face below white once the hemisphere term is added.
const spotScale = 0.4

type lighting struct {
	sky, ground    [3]float32
	hemiIntensity  float32
	lightIntensity float32
}

// NewRegistry returns a registry with nothing loaded.
func NewRegistry() *Registry {
	return &Registry{lightDir: [3]float32{1, 1, 1}}
}

// SetView sets the camera position and the lights from the scene description. Call once per frame
// before DrawInstanced.
func (r *Registry) SetView(viewPos [3]float32, d scenegraph.Description) {
	r.viewPos = viewPos
	r.lightDir = [3]float32{d.Spot.Position[0], d.Spot.Position[1], d.Spot.Position[2]}
	r.lights = lighting{
		sky:    linearHex(d.Hemisphere.Sky),
		ground: linearHex(d.Hemisphere.Ground),
		// Scene intensities are π-scaled; the shader works in the 0..1 range.
		hemiIntensity:  d.Hemisphere.Intensity / math32.Pi,
		lightIntensity: d.Spot.Intensity / math32.Pi * spotScale,
	}
}

// linearHex decodes "#rrggbb" to linear RGB, the space the shader lights in.
func linearHex(hex string) [3]float32 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return [3]float32{1, 1, 1}
	}
	r, g, b := c.LinearRgb()
	return [3]float32{float32(r), float32(g), float32(b)}
}

// ColorFromHex converts "#rrggbb" to a raylib colour, falling back to fallback on a bad string.
func ColorFromHex(hex string, alpha uint8, fallback rl.Color) rl.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	red, green, blue := c.RGB255()
	return rl.NewColor(red, green, blue, alpha)
}

func (r *Registry) ensureMaterial() {
	if r.mtlLoaded {
		return
	}
	r.mtl = rl.LoadMaterialDefault()
	shader := rl.LoadShaderFromMemory(instancedVS, instancedFS)
	if rl.IsShaderValid(shader) {
		shader.UpdateLocation(rl.ShaderLocMatrixMvp, rl.GetShaderLocation(shader, "mvp"))
		shader.UpdateLocation(rl.ShaderLocVectorView, rl.GetShaderLocation(shader, "viewPos"))
		shader.UpdateLocation(rl.ShaderLocMatrixModel, rl.GetShaderLocationAttrib(shader, "instanceTransform"))
		r.mtl.Shader = shader
	}
	r.mtlLoaded = true
}

// ensureMesh generates the mesh for geom, unloading the previous one if the geometry changed.
func (r *Registry) ensureMesh(geom instancing.Geometry) {
	if r.meshLoaded && r.geometry == geom {
		return
	}
	r.unloadMesh()
	switch geom.Mode {
	case shape.Sphere:
		r.mesh = rl.GenMeshSphere(geom.Radius, geom.Segments, geom.Segments)
	default:
		r.mesh = rl.GenMeshCube(geom.Extent, geom.Extent, geom.Extent)
	}
	r.geometry = geom
	r.meshLoaded = true
}

func (r *Registry) unloadMesh() {
	if !r.meshLoaded {
		return
	}
	rl.UnloadMesh(&r.mesh)
	r.meshLoaded = false
}

// DrawInstanced draws every slot of t in one instanced call. The slot colours travel in the bottom
// row of each instance matrix (see Target.InstanceData). Must be called between BeginMode3D and EndMode3D.
func (r *Registry) DrawInstanced(t *instancing.Target) {
	if t == nil || t.Len() == 0 {
		return
	}
	r.ensureMaterial()
	r.ensureMesh(t.Geometry)
	r.setShaderUniforms(r.mtl.Shader)
	if albedo := r.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = rl.White
	}

	data := t.InstanceData()
	if cap(r.instances) < len(data) {
		r.instances = make([]rl.Matrix, len(data))
	}
	r.instances = r.instances[:len(data)]
	for i, m := range data {
		r.instances[i] = toMatrix(m)
	}
	rl.DrawMeshInstanced(r.mesh, r.mtl, r.instances, len(r.instances))
}

// DrawGround draws the ground square. The shadow-only material has no shadows to show here, so the
// plane is drawn as a faint tint of its colour.
func (r *Registry) DrawGround(g scenegraph.Ground) {
	tint := ColorFromHex(g.Color, 40, rl.NewColor(23, 23, 23, 40))
	rl.DrawPlane(rl.NewVector3(0, 0, 0), rl.NewVector2(g.Size, g.Size), tint)
}

// Unload releases the mesh and the instancing shader.
func (r *Registry) Unload() {
	r.unloadMesh()
	if r.mtlLoaded && rl.IsShaderValid(r.mtl.Shader) {
		rl.UnloadShader(r.mtl.Shader)
	}
	r.mtlLoaded = false
	r.instances = nil
}

func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M4: m[4], M8: m[8], M12: m[12],
		M1: m[1], M5: m[5], M9: m[9], M13: m[13],
		M2: m[2], M6: m[6], M10: m[10], M14: m[14],
		M3: m[3], M7: m[7], M11: m[11], M15: m[15],
	}
}

func (r *Registry) setShaderUniforms(shader rl.Shader) {
	if !rl.IsShaderValid(shader) {
		return
	}
	if loc := rl.GetShaderLocation(shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, r.viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, r.lightDir[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "skyColor"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, r.lights.sky[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "groundColor"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, r.lights.ground[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "hemiIntensity"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{r.lights.hemiIntensity}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "lightIntensity"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{r.lights.lightIntensity}, rl.ShaderUniformFloat)
	}
}

// Instancing shader: per-instance model matrix from the instanceTransform attribute with the linear
// instance colour packed in its bottom row, hemisphere ambient plus one directional (Lambert) light,
// lit in linear space and encoded to sRGB on output.
const (
	instancedVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
in mat4 instanceTransform;
uniform mat4 mvp;
out vec3 fragPosition;
out vec3 fragNormal;
out vec3 fragColor;
void main() {
  mat4 model = instanceTransform;
  fragColor = vec3(model[0][3], model[1][3], model[2][3]);
  model[0][3] = 0.0;
  model[1][3] = 0.0;
  model[2][3] = 0.0;
  vec4 worldPos = model * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragNormal = mat3(model) * vertexNormal;
  gl_Position = mvp * worldPos;
}
`
	instancedFS = `#version 330
in vec3 fragPosition;
in vec3 fragNormal;
in vec3 fragColor;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec3 skyColor;
uniform vec3 groundColor;
uniform float hemiIntensity;
uniform float lightIntensity;
out vec4 finalColor;
void main() {
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 hemi = mix(groundColor, skyColor, N.y * 0.5 + 0.5) * hemiIntensity;
  float NdotL = max(dot(N, L), 0.0);
  vec3 lit = fragColor * colDiffuse.rgb * (hemi + NdotL * lightIntensity);
  finalColor = vec4(pow(clamp(lit, 0.0, 1.0), vec3(1.0 / 2.2)), colDiffuse.a);
}
`
)
