// Package renderer draws skinned meshes with OpenGL.
//
// Skinning runs on the CPU; each frame the deformed positions of a mesh are
// streamed into a dynamic vertex buffer while colors and indices stay static.
package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/skinview/internal/engine/scene"
	"github.com/Faultbox/skinview/internal/engine/shader"
	"github.com/Faultbox/skinview/internal/logger"
	"github.com/Faultbox/skinview/pkg/math"
)

const vec3Size = int(unsafe.Sizeof(math.Vec3{}))

// Config holds renderer configuration.
type Config struct {
	Width     int
	Height    int
	Wireframe bool
}

// Renderer owns the GL state used to draw meshes.
type Renderer struct {
	config  Config
	program *shader.Program
	meshes  map[*scene.Mesh]*gpuMesh
}

type gpuMesh struct {
	vao      uint32
	position uint32
	color    uint32
	index    uint32
	vertices int
	count    int32
}

// New creates a renderer. The GL context must already be current.
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	program, err := shader.CompileProgram(skinnedVertex, colorFragment)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}

	r := &Renderer{
		config:  cfg,
		program: program,
		meshes:  make(map[*scene.Mesh]*gpuMesh),
	}
	r.Resize(cfg.Width, cfg.Height)
	r.SetWireframe(cfg.Wireframe)
	return r, nil
}

// Upload creates GPU buffers for m. Positions start at the rest pose.
func (r *Renderer) Upload(m *scene.Mesh) error {
	if _, ok := r.meshes[m]; ok {
		return nil
	}
	if len(m.Rest) == 0 || len(m.Indices) == 0 {
		return errors.New("renderer: empty mesh")
	}
	if len(m.Colors) != len(m.Rest) {
		return fmt.Errorf("renderer: mesh %q has %d colors for %d vertices", m.Name, len(m.Colors), len(m.Rest))
	}

	g := &gpuMesh{vertices: len(m.Rest), count: int32(len(m.Indices))}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.position)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.position)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Rest)*vec3Size, unsafe.Pointer(&m.Rest[0]), gl.DYNAMIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, int32(vec3Size), nil)
	gl.EnableVertexAttribArray(0)

	gl.GenBuffers(1, &g.color)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.color)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Colors)*vec3Size, unsafe.Pointer(&m.Colors[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, int32(vec3Size), nil)
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &g.index)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.index)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.meshes[m] = g
	logger.Debug("mesh uploaded",
		zap.String("mesh", m.Name),
		zap.Uint32("vao", g.vao),
		zap.Int("vertices", g.vertices),
		zap.Int32("indices", g.count),
	)
	return nil
}

// Draw streams the skinned positions of s and draws its mesh.
func (r *Renderer) Draw(s scene.Skin, viewProj math.Mat4) {
	g, ok := r.meshes[s.Mesh]
	if !ok || len(s.Positions) != g.vertices {
		return
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, g.position)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(s.Positions)*vec3Size, unsafe.Pointer(&s.Positions[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.program.Use()
	r.program.SetMat4("uViewProj", viewProj)
	gl.BindVertexArray(g.vao)
	gl.DrawElements(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// SetWireframe toggles polygon line mode.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// Wireframe reports whether polygons are drawn as lines.
func (r *Renderer) Wireframe() bool {
	return r.config.Wireframe
}

// Resize handles drawable size changes.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.Flush()
}

// Close releases all GPU resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for m, g := range r.meshes {
		gl.DeleteVertexArrays(1, &g.vao)
		buffers := []uint32{g.position, g.color, g.index}
		gl.DeleteBuffers(int32(len(buffers)), &buffers[0])
		delete(r.meshes, m)
	}
	r.program.Delete()
}
