// Package renderer draws skinned geometry with OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-skin/internal/config"
	"github.com/Faultbox/midgard-skin/internal/engine/data"
	"github.com/Faultbox/midgard-skin/internal/engine/render"
	"github.com/Faultbox/midgard-skin/internal/engine/shader"
	"github.com/Faultbox/midgard-skin/internal/engine/skinning"
	"github.com/Faultbox/midgard-skin/internal/logger"
)

// MaxShaderBones is the size of the bone matrix array in the skinned shader.
// Configurations with more bones are rejected by config.Validate.
const MaxShaderBones = config.MaxBones

// attributeLocations binds vertex attribute names to shader inputs.
var attributeLocations = map[string]uint32{
	skinning.AttrPosition:     0,
	skinning.AttrNormal:       1,
	skinning.AttrBoneIDsA:     2,
	skinning.AttrBoneIDsB:     3,
	skinning.AttrBoneWeightsA: 4,
	skinning.AttrBoneWeightsB: 5,
}

const numLocations = 6

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config  Config
	ctx     *GLContext
	program *shader.Program

	warnedBones bool
}

// Mesh is a geometry ready to draw with its index buffer.
type Mesh struct {
	geometry   *render.Geometry
	vao        uint32
	ebo        uint32
	indexCount int32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0) // Dark blue-gray background
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.NewProgram(shader.SkinnedVertexShader, shader.SkinnedFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create skinned shader: %w", err)
	}
	logger.Debug("shader program created", zap.Uint32("program", r.program.ID()))

	r.ctx = NewGLContext()
	return r, nil
}

// Context returns the buffer context that skinning components upload through.
func (r *Renderer) Context() *GLContext { return r.ctx }

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// AspectRatio returns width over height of the viewport.
func (r *Renderer) AspectRatio() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame and sets the camera and light for subsequent draws.
func (r *Renderer) Begin(projection, view mgl32.Mat4, lightDir mgl32.Vec3) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.program.Use()
	gl.UniformMatrix4fv(r.program.Uniform("uProjection"), 1, false, &projection[0])
	gl.UniformMatrix4fv(r.program.Uniform("uView"), 1, false, &view[0])
	gl.Uniform3fv(r.program.Uniform("uLightDir"), 1, &lightDir[0])
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// ReadPixels reads the back buffer as RGBA rows, bottom row first.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels, width, height
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}

// NewMesh uploads g's buffers if needed and creates the index buffer.
func (r *Renderer) NewMesh(g *render.Geometry, indices []uint32) (*Mesh, error) {
	for _, vb := range g.VertexBuffers() {
		if vb.ID() != 0 {
			continue
		}
		if err := vb.Upload(); err != nil {
			return nil, fmt.Errorf("uploading vertex buffer: %w", err)
		}
	}

	m := &Mesh{geometry: g, indexCount: int32(len(indices))}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	if len(indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	return m, nil
}

// DeleteMesh frees the mesh's VAO and index buffer. Vertex buffers belong to the geometry.
func (r *Renderer) DeleteMesh(m *Mesh) {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
}

// Draw renders m with the given model transform and color.
// Attributes are rebound every draw since skinning may attach or detach the
// bone vertex buffer at any time.
func (r *Renderer) Draw(m *Mesh, model mgl32.Mat4, color mgl32.Vec3) {
	gl.BindVertexArray(m.vao)

	var enabled [numLocations]bool
	for _, vb := range m.geometry.VertexBuffers() {
		if vb.ID() == 0 {
			continue
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, vb.ID())
		stride := int32(vb.VertexSize() * 4)
		for _, attr := range vb.Attributes() {
			loc, ok := attributeLocations[attr.Name]
			if !ok || enabled[loc] {
				continue
			}
			gl.EnableVertexAttribArray(loc)
			gl.VertexAttribPointerWithOffset(loc, int32(attr.Size), gl.FLOAT, false, stride, uintptr(attr.Offset*4))
			enabled[loc] = true
		}
	}
	for loc, on := range enabled {
		if !on {
			gl.DisableVertexAttribArray(uint32(loc))
		}
	}

	r.bindBones(m.geometry.Data())

	gl.UniformMatrix4fv(r.program.Uniform("uModel"), 1, false, &model[0])
	gl.Uniform3fv(r.program.Uniform("uColor"), 1, &color[0])
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, 0)
}

// bindBones uploads the geometry's bone palette. Matrices are stored row-major,
// so they are transposed on upload.
func (r *Renderer) bindBones(props *data.Store) {
	numBones, _ := data.Get[int](props, skinning.PropNumBones)
	bones, ok := data.Get[*render.UniformArray](props, skinning.PropBoneMatrices)
	if !ok || numBones <= 0 || bones.Count == 0 || len(bones.Values) == 0 {
		gl.Uniform1i(r.program.Uniform("uNumBones"), 0)
		return
	}

	count := bones.Count
	if count > MaxShaderBones {
		if !r.warnedBones {
			logger.Warn("bone palette exceeds shader capacity, truncating",
				zap.Int("bones", count),
				zap.Int("capacity", MaxShaderBones),
			)
			r.warnedBones = true
		}
		count = MaxShaderBones
	}

	gl.Uniform1i(r.program.Uniform("uNumBones"), int32(count))
	gl.UniformMatrix4fv(r.program.Uniform("uBoneMatrices[0]"), int32(count), true, &bones.Values[0])
}
