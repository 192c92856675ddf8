package render

import "fmt"

// Attribute describes one named field of an interleaved vertex.
// Size and Offset are counted in float32 elements, not bytes.
type Attribute struct {
	Name   string
	Size   int
	Offset int
}

// VertexBuffer is interleaved float vertex data mirrored to a GPU buffer.
type VertexBuffer struct {
	ctx        Context
	id         uint32
	data       []float32
	attributes []Attribute
	vertexSize int
}

// NewVertexBuffer wraps data. The GPU buffer is allocated on the first Upload.
func NewVertexBuffer(ctx Context, data []float32) *VertexBuffer {
	return &VertexBuffer{
		ctx:  ctx,
		data: data,
	}
}

// AddAttribute declares a named attribute. Each attribute widens the vertex by size.
func (vb *VertexBuffer) AddAttribute(name string, size, offset int) {
	vb.attributes = append(vb.attributes, Attribute{Name: name, Size: size, Offset: offset})
	vb.vertexSize += size
}

// Attribute looks up an attribute by name.
func (vb *VertexBuffer) Attribute(name string) (Attribute, bool) {
	for _, a := range vb.attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Attributes returns the declared attributes in declaration order.
func (vb *VertexBuffer) Attributes() []Attribute {
	return vb.attributes
}

// Data returns the live CPU-side storage. Writes become visible on the GPU after Upload.
func (vb *VertexBuffer) Data() []float32 {
	return vb.data
}

// VertexSize returns the stride of one vertex in float32 elements.
func (vb *VertexBuffer) VertexSize() int {
	return vb.vertexSize
}

// NumVertices returns the number of complete vertices in the buffer.
func (vb *VertexBuffer) NumVertices() int {
	if vb.vertexSize == 0 {
		return 0
	}
	return len(vb.data) / vb.vertexSize
}

// ID returns the GPU handle, or 0 before the first Upload.
func (vb *VertexBuffer) ID() uint32 {
	return vb.id
}

// Upload sends the CPU-side data to the backend.
func (vb *VertexBuffer) Upload() error {
	if vb.ctx == nil {
		return fmt.Errorf("vertex buffer: no render context")
	}
	if vb.id == 0 {
		id, err := vb.ctx.CreateVertexBuffer(vb.data)
		if err != nil {
			return fmt.Errorf("creating vertex buffer: %w", err)
		}
		vb.id = id
		return nil
	}
	if err := vb.ctx.UploadVertexBuffer(vb.id, vb.data); err != nil {
		return fmt.Errorf("uploading vertex buffer %d: %w", vb.id, err)
	}
	return nil
}

// Dispose frees the GPU buffer. The CPU-side data is kept.
func (vb *VertexBuffer) Dispose() {
	if vb.id != 0 && vb.ctx != nil {
		vb.ctx.DeleteVertexBuffer(vb.id)
	}
	vb.id = 0
}
