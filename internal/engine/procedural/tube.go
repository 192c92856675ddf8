// Package procedural generates skinned test content: a bending tube mesh and
// the bone animation that drives it.
package procedural

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-skin/internal/engine/render"
	"github.com/Faultbox/midgard-skin/internal/engine/skinning"
)

// Tube dimensions in model units. The axis runs along +Y from the origin.
const (
	TubeLength = 2.0
	TubeRadius = 0.2
)

// vertexSize is position(3) + normal(3).
const vertexSize = 6

// ErrBadParams is returned for non-positive mesh or bone counts.
var ErrBadParams = errors.New("procedural: invalid parameters")

// Params shapes the generated tube and its skeleton.
type Params struct {
	Segments       int     // Rings along the axis, minus one
	Rings          int     // Vertices around each ring
	Bones          int     // Bones stacked along the axis
	MaxVertexBones int     // Influences per vertex
	BendDegrees    float32 // Peak rotation of each joint
	FrameRate      float32 // Sampled poses per second
	Duration       float32 // Clip length in seconds
}

func (p Params) validate() error {
	switch {
	case p.Segments <= 0, p.Rings < 3:
		return fmt.Errorf("%w: %d segments, %d rings", ErrBadParams, p.Segments, p.Rings)
	case p.Bones <= 0, p.MaxVertexBones <= 0:
		return fmt.Errorf("%w: %d bones, %d per vertex", ErrBadParams, p.Bones, p.MaxVertexBones)
	case p.FrameRate <= 0 || p.Duration < 0:
		return fmt.Errorf("%w: %v fps over %vs", ErrBadParams, p.FrameRate, p.Duration)
	}
	return nil
}

// Mesh is an indexed triangle list with interleaved position and normal.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// NumVertices returns the vertex count.
func (m *Mesh) NumVertices() int { return len(m.Vertices) / vertexSize }

// Bounds returns the axis-aligned bounding box of the bind pose.
func (m *Mesh) Bounds() (min, max [3]float32) {
	for i := 0; i < 3; i++ {
		min[i] = float32(gomath.Inf(1))
		max[i] = float32(gomath.Inf(-1))
	}
	for v := 0; v < m.NumVertices(); v++ {
		for i := 0; i < 3; i++ {
			x := m.Vertices[v*vertexSize+i]
			min[i] = float32(gomath.Min(float64(min[i]), float64(x)))
			max[i] = float32(gomath.Max(float64(max[i]), float64(x)))
		}
	}
	return min, max
}

// Geometry copies the mesh into a fresh vertex buffer on ctx with the
// position and normal attributes skinning looks for.
func (m *Mesh) Geometry(ctx render.Context) *render.Geometry {
	vb := render.NewVertexBuffer(ctx, append([]float32(nil), m.Vertices...))
	vb.AddAttribute(skinning.AttrPosition, 3, 0)
	vb.AddAttribute(skinning.AttrNormal, 3, 3)
	return render.NewGeometry(vb)
}

// NewTube builds an open cylinder of (Segments+1) * Rings vertices.
func NewTube(p Params) (*Mesh, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	m := &Mesh{
		Vertices: make([]float32, 0, (p.Segments+1)*p.Rings*vertexSize),
		Indices:  make([]uint32, 0, p.Segments*p.Rings*6),
	}

	for s := 0; s <= p.Segments; s++ {
		y := float32(TubeLength * float64(s) / float64(p.Segments))
		for r := 0; r < p.Rings; r++ {
			angle := 2 * gomath.Pi * float64(r) / float64(p.Rings)
			nx := float32(gomath.Cos(angle))
			nz := float32(gomath.Sin(angle))
			m.Vertices = append(m.Vertices,
				nx*TubeRadius, y, nz*TubeRadius,
				nx, 0, nz,
			)
		}
	}

	rings := uint32(p.Rings)
	for s := uint32(0); s < uint32(p.Segments); s++ {
		for r := uint32(0); r < rings; r++ {
			a := s*rings + r
			b := s*rings + (r+1)%rings
			c := a + rings
			d := b + rings
			m.Indices = append(m.Indices, a, c, b, b, c, d)
		}
	}

	return m, nil
}
