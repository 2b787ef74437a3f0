package primitives

import (
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"scene-director/internal/lighting"
	"scene-director/internal/scene"
)

const (
	sphereRings    = 16
	sphereSlices   = 16
	cylinderSlices = 24
)

// Lighting defaults for the lit shader.
var (
	ambient   = [4]float32{0.2, 0.22, 0.26, 1.0}
	lightTint = [3]float32{1.0, 0.98, 0.95}
)

const (
	ambientLevel     = float32(0.25)
	lightIntensity   = float32(0.75)
	specularPower    = float32(48.0)
	specularStrength = float32(0.35)
)

type cached struct {
	mesh rl.Mesh
	mtl  rl.Material
	// offset centers the unit mesh on its node's origin.
	offset rl.Matrix
}

// Registry maps shape kinds to a unit mesh and a lit material. Meshes are created on first use
// so that GPU resources are allocated after the window exists.
type Registry struct {
	cache    map[string]*cached
	shader   rl.Shader
	viewPos  mgl32.Vec3
	lightDir mgl32.Vec3
	rig      *lighting.Rig
	drawn    int
}

func NewRegistry() *Registry {
	return &Registry{
		cache:    make(map[string]*cached),
		lightDir: mgl32.Vec3{0.5, 1, 0.5},
	}
}

// SetView sets the eye position and the direction to the light for this frame.
func (r *Registry) SetView(viewPos, lightDir mgl32.Vec3) {
	r.viewPos = viewPos
	r.lightDir = lightDir
}

// SetLights sets the spot rig drawn with the directional light. Nil removes it.
func (r *Registry) SetLights(rig *lighting.Rig) {
	r.rig = rig
}

// Drawn returns how many shapes the last DrawScene call submitted.
func (r *Registry) Drawn() int {
	return r.drawn
}

// DrawScene draws every visible shaped node under root. Must be called between BeginMode3D and
// EndMode3D.
func (r *Registry) DrawScene(root *scene.Node) {
	r.drawn = 0
	root.Walk(func(n *scene.Node, world mgl32.Mat4) {
		if r.Draw(*n.Shape, world) {
			r.drawn++
		}
	})
}

// Draw draws one shape with the given world transform. Unknown kinds are skipped and reported false.
func (r *Registry) Draw(s scene.Shape, world mgl32.Mat4) bool {
	c := r.ensure(s.Kind)
	if c == nil {
		return false
	}
	col := s.RGBA()
	if albedo := c.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = rl.NewColor(col.R, col.G, col.B, col.A)
	}
	r.setUniforms(c.mtl.Shader)

	e := s.Extent()
	local := rl.MatrixMultiply(c.offset, rl.MatrixScale(e[0], e[1], e[2]))
	rl.DrawMesh(c.mesh, c.mtl, rl.MatrixMultiply(local, toMatrix(world)))
	return true
}

// Unload frees every cached mesh and the shader. Call before the window closes.
func (r *Registry) Unload() {
	for kind, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
		delete(r.cache, kind)
	}
	if rl.IsShaderValid(r.shader) {
		rl.UnloadShader(r.shader)
	}
}

func (r *Registry) ensure(kind string) *cached {
	if c, ok := r.cache[kind]; ok {
		return c
	}
	var mesh rl.Mesh
	offset := rl.MatrixIdentity()
	switch kind {
	case "cube":
		mesh = rl.GenMeshCube(1, 1, 1)
	case "sphere":
		mesh = rl.GenMeshSphere(0.5, sphereRings, sphereSlices)
	case "cylinder":
		// Raylib cylinders stand on Y=0.
		mesh = rl.GenMeshCylinder(0.5, 1, cylinderSlices)
		offset = rl.MatrixTranslate(0, -0.5, 0)
	case "plane":
		mesh = rl.GenMeshPlane(1, 1, 1, 1)
	default:
		return nil
	}
	mtl := rl.LoadMaterialDefault()
	if !rl.IsShaderValid(r.shader) {
		r.shader = rl.LoadShaderFromMemory(litVS, strings.ReplaceAll(litFS, "MAX_SPOTS", strconv.Itoa(lighting.MaxSpots)))
	}
	if rl.IsShaderValid(r.shader) {
		mtl.Shader = r.shader
	}
	c := &cached{mesh: mesh, mtl: mtl, offset: offset}
	r.cache[kind] = c
	return c
}

// toMatrix converts a column-major mgl32 matrix to raylib's layout, which is also column-major.
func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

func (r *Registry) setUniforms(shader rl.Shader) {
	if !rl.IsShaderValid(shader) {
		return
	}
	// Local copies keep the slices cgo-safe.
	viewPos := [3]float32(r.viewPos)
	lightDir := [3]float32(r.lightDir)
	amb := ambient
	if r.rig != nil && r.rig.Ambient != nil {
		a := *r.rig.Ambient
		amb = [4]float32{a[0] * ambientLevel, a[1] * ambientLevel, a[2] * ambientLevel, 1}
	}
	tint := lightTint
	if loc := rl.GetShaderLocation(shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lightDir[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "ambient"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, amb[:], rl.ShaderUniformVec4, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightColor"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, tint[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightIntensity"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{lightIntensity}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularPower"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{specularPower}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularStrength"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{specularStrength}, rl.ShaderUniformFloat)
	}

	u := r.rig.Uniforms()
	if loc := rl.GetShaderLocation(shader, "spotCount"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{float32(u.Count)}, rl.ShaderUniformFloat)
	}
	if u.Count == 0 {
		return
	}
	n := int32(u.Count)
	if loc := rl.GetShaderLocation(shader, "spotPos"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, u.Positions, rl.ShaderUniformVec3, n)
	}
	if loc := rl.GetShaderLocation(shader, "spotColor"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, u.Colors, rl.ShaderUniformVec3, n)
	}
	if loc := rl.GetShaderLocation(shader, "spotShape"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, u.Shapes, rl.ShaderUniformVec4, n)
	}
}

const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragPosition;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragNormal = mat3(transpose(inverse(matModel))) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float specularPower;
uniform float specularStrength;
uniform float spotCount;
uniform vec3 spotPos[MAX_SPOTS];
uniform vec3 spotColor[MAX_SPOTS];
uniform vec4 spotShape[MAX_SPOTS];
out vec4 finalColor;
void main() {
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = colDiffuse.rgb * NdotL * lightColor * lightIntensity;
  vec3 amb = ambient.rgb * colDiffuse.rgb;
  float spec = pow(max(dot(N, normalize(L + V)), 0.0), specularPower) * specularStrength;
  vec3 specular = lightColor * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  for (int i = 0; i < MAX_SPOTS; i++) {
    if (float(i) >= spotCount) break;
    vec3 toSpot = spotPos[i] - fragPosition;
    float d = length(toSpot);
    vec3 S = toSpot / max(d, 1e-4);
    vec4 shape = spotShape[i];
    float cone = smoothstep(shape.x, max(shape.y, shape.x + 1e-4), S.y);
    float fall = shape.z > 0.0 ? clamp(1.0 - d / shape.z, 0.0, 1.0) : 1.0;
    diffuse += colDiffuse.rgb * max(dot(N, S), 0.0) * spotColor[i] * shape.w * cone * fall;
  }
  finalColor = vec4(amb + diffuse + specular, colDiffuse.a);
}
`
)
