// Package render defines the boundary between engine components and the GPU backend.
package render

import (
	"fmt"
	"sync"
)

// Context owns GPU vertex buffer storage.
// Implementations are called from the render thread only.
type Context interface {
	// CreateVertexBuffer allocates a buffer and returns its handle.
	CreateVertexBuffer(data []float32) (uint32, error)
	// UploadVertexBuffer replaces the contents of an existing buffer.
	UploadVertexBuffer(id uint32, data []float32) error
	// DeleteVertexBuffer frees a buffer. Unknown handles are ignored.
	DeleteVertexBuffer(id uint32)
}

// HeadlessContext keeps buffer contents in memory.
// It backs the CLI tools and tests where no GPU is available.
type HeadlessContext struct {
	mu      sync.Mutex
	nextID  uint32
	buffers map[uint32][]float32
	uploads map[uint32]int
}

// NewHeadlessContext creates an empty in-memory context.
func NewHeadlessContext() *HeadlessContext {
	return &HeadlessContext{
		buffers: make(map[uint32][]float32),
		uploads: make(map[uint32]int),
	}
}

// CreateVertexBuffer stores a copy of data under a fresh handle.
func (c *HeadlessContext) CreateVertexBuffer(data []float32) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.buffers[id] = append([]float32(nil), data...)
	c.uploads[id] = 1
	return id, nil
}

// UploadVertexBuffer replaces the stored copy.
func (c *HeadlessContext) UploadVertexBuffer(id uint32, data []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.buffers[id]; !ok {
		return fmt.Errorf("vertex buffer %d: not allocated", id)
	}
	c.buffers[id] = append(c.buffers[id][:0], data...)
	c.uploads[id]++
	return nil
}

// DeleteVertexBuffer forgets the buffer.
func (c *HeadlessContext) DeleteVertexBuffer(id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.buffers, id)
	delete(c.uploads, id)
}

// Contents returns a copy of what was last uploaded for id.
func (c *HeadlessContext) Contents(id uint32) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.buffers[id]
	if !ok {
		return nil, false
	}
	return append([]float32(nil), data...), true
}

// UploadCount returns how many times id was written, creation included.
func (c *HeadlessContext) UploadCount(id uint32) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploads[id]
}

// NumBuffers returns the number of live buffers.
func (c *HeadlessContext) NumBuffers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffers)
}
