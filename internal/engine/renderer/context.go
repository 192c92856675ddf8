package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-skin/internal/engine/render"
)

// GLContext stores vertex buffers in OpenGL buffer objects.
// It must be used on the thread that owns the GL context.
type GLContext struct {
	sizes map[uint32]int
}

var _ render.Context = (*GLContext)(nil)

// NewGLContext creates a context bound to the current GL context.
func NewGLContext() *GLContext {
	return &GLContext{sizes: make(map[uint32]int)}
}

// CreateVertexBuffer allocates a VBO and fills it with data.
func (c *GLContext) CreateVertexBuffer(data []float32) (uint32, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, fmt.Errorf("glGenBuffers returned no buffer")
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, glPtr(data), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	c.sizes[id] = len(data)
	return id, nil
}

// UploadVertexBuffer replaces the VBO contents, reallocating when the size changed.
func (c *GLContext) UploadVertexBuffer(id uint32, data []float32) error {
	size, ok := c.sizes[id]
	if !ok {
		return fmt.Errorf("vertex buffer %d: not allocated", id)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	if size == len(data) {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data)*4, glPtr(data))
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, glPtr(data), gl.DYNAMIC_DRAW)
		c.sizes[id] = len(data)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// DeleteVertexBuffer frees the VBO.
func (c *GLContext) DeleteVertexBuffer(id uint32) {
	if _, ok := c.sizes[id]; !ok {
		return
	}
	gl.DeleteBuffers(1, &id)
	delete(c.sizes, id)
}

func glPtr(data []float32) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}
