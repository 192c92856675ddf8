package render

import "github.com/Faultbox/midgard-skin/internal/engine/data"

// UniformArray is a (count, values) binding for an array uniform.
// Values is borrowed, not owned: it points at the producer's storage and
// is only valid until the producer replaces it.
type UniformArray struct {
	Count  int
	Values []float32
}

// Geometry groups the vertex buffers of one mesh with its render properties.
type Geometry struct {
	buffers []*VertexBuffer
	data    *data.Store
}

// NewGeometry creates a geometry from the given buffers.
func NewGeometry(buffers ...*VertexBuffer) *Geometry {
	g := &Geometry{data: data.NewStore()}
	for _, vb := range buffers {
		g.AddVertexBuffer(vb)
	}
	return g
}

// AddVertexBuffer attaches vb. Attaching the same buffer twice is a no-op.
func (g *Geometry) AddVertexBuffer(vb *VertexBuffer) {
	for _, existing := range g.buffers {
		if existing == vb {
			return
		}
	}
	g.buffers = append(g.buffers, vb)
}

// RemoveVertexBuffer detaches vb if present. The buffer itself is untouched.
func (g *Geometry) RemoveVertexBuffer(vb *VertexBuffer) {
	for i, existing := range g.buffers {
		if existing == vb {
			g.buffers = append(g.buffers[:i], g.buffers[i+1:]...)
			return
		}
	}
}

// HasVertexBuffer reports whether vb is attached.
func (g *Geometry) HasVertexBuffer(vb *VertexBuffer) bool {
	for _, existing := range g.buffers {
		if existing == vb {
			return true
		}
	}
	return false
}

// VertexBuffers returns the attached buffers in attach order.
func (g *Geometry) VertexBuffers() []*VertexBuffer {
	return g.buffers
}

// HasVertexAttribute reports whether any attached buffer declares name.
func (g *Geometry) HasVertexAttribute(name string) bool {
	return g.VertexBuffer(name) != nil
}

// VertexBuffer returns the first attached buffer declaring name, or nil.
func (g *Geometry) VertexBuffer(name string) *VertexBuffer {
	for _, vb := range g.buffers {
		if _, ok := vb.Attribute(name); ok {
			return vb
		}
	}
	return nil
}

// Data returns the geometry's property store.
func (g *Geometry) Data() *data.Store {
	return g.data
}
