package skin

import (
	"errors"
	"fmt"
)

var (
	// ErrNoVertices is returned for a skin without vertices.
	ErrNoVertices = errors.New("skin: no vertices")
	// ErrNoBones is returned for a skin without bones.
	ErrNoBones = errors.New("skin: no bones")
	// ErrNoFrames is returned by Build when no frame was added.
	ErrNoFrames = errors.New("skin: no frames")
	// ErrBadDuration is returned for a negative or NaN clip length.
	ErrBadDuration = errors.New("skin: negative or NaN duration")
	// ErrBoneRange is returned for an influence naming a bone past numBones.
	ErrBoneRange = errors.New("skin: bone id out of range")
	// ErrVertexRange is returned for an influence on a vertex past numVertices.
	ErrVertexRange = errors.New("skin: vertex index out of range")
	// ErrFrameSize is returned for a frame that is not numBones matrices long.
	ErrFrameSize = errors.New("skin: frame has wrong number of floats")
	// ErrNegativeWeight is returned for an influence with a weight below zero.
	ErrNegativeWeight = errors.New("skin: negative bone weight")
)

// Builder accumulates skin data and validates it on Build.
// The first error sticks; later calls are ignored.
type Builder struct {
	numBones    int
	duration    float32
	vertexBones [][]VertexBone
	frames      [][]float32
	err         error
}

// NewBuilder starts a skin with numVertices vertices and numBones bones.
func NewBuilder(numVertices, numBones int) *Builder {
	b := &Builder{numBones: numBones}
	switch {
	case numVertices <= 0:
		b.err = ErrNoVertices
	case numBones <= 0:
		b.err = ErrNoBones
	default:
		b.vertexBones = make([][]VertexBone, numVertices)
	}
	return b
}

// SetDuration sets the clip length in seconds.
func (b *Builder) SetDuration(seconds float32) *Builder {
	if b.err != nil {
		return b
	}
	if seconds < 0 || seconds != seconds {
		b.err = fmt.Errorf("%w: %v", ErrBadDuration, seconds)
		return b
	}
	b.duration = seconds
	return b
}

// AddInfluence appends a bone influence to vertex v.
func (b *Builder) AddInfluence(v, bone int, weight float32) *Builder {
	if b.err != nil {
		return b
	}
	switch {
	case v < 0 || v >= len(b.vertexBones):
		b.err = fmt.Errorf("%w: vertex %d", ErrVertexRange, v)
	case bone < 0 || bone >= b.numBones:
		b.err = fmt.Errorf("%w: vertex %d bone %d (bones=%d)", ErrBoneRange, v, bone, b.numBones)
	case weight < 0:
		b.err = fmt.Errorf("%w: vertex %d bone %d weight %v", ErrNegativeWeight, v, bone, weight)
	default:
		b.vertexBones[v] = append(b.vertexBones[v], VertexBone{ID: bone, Weight: weight})
	}
	return b
}

// AddFrame appends one frame of numBones row-major matrices. The slice is copied.
func (b *Builder) AddFrame(matrices []float32) *Builder {
	if b.err != nil {
		return b
	}
	if len(matrices) != b.numBones*MatrixSize {
		b.err = fmt.Errorf("%w: frame %d has %d, want %d",
			ErrFrameSize, len(b.frames), len(matrices), b.numBones*MatrixSize)
		return b
	}
	b.frames = append(b.frames, append([]float32(nil), matrices...))
	return b
}

// Build validates the data and returns the skin. The skin owns copies of
// the builder's data, so later calls on the builder leave it unchanged.
func (b *Builder) Build() (*Skin, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.frames) == 0 {
		return nil, ErrNoFrames
	}

	maxBones := 0
	vertexBones := make([][]VertexBone, len(b.vertexBones))
	for v, vb := range b.vertexBones {
		if len(vb) > maxBones {
			maxBones = len(vb)
		}
		vertexBones[v] = append([]VertexBone(nil), vb...)
	}

	return &Skin{
		numBones:       b.numBones,
		duration:       b.duration,
		maxVertexBones: maxBones,
		vertexBones:    vertexBones,
		frames:         append([][]float32(nil), b.frames...),
	}, nil
}
